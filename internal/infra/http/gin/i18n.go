package ginserver

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var (
	supportedLanguages = []language.Tag{language.English, language.Turkish}
	languageMatcher    = language.NewMatcher(supportedLanguages)
	messages           = newCatalog()
)

// turkish holds the tr catalogue keyed by message code. English text comes from
// the error itself.
var turkish = map[string]string{
	"access.admin_only":              "yönetici yetkisi gerekli",
	"access.forbidden":               "bu işlemi yapma yetkiniz yok",
	"access.host_only":               "ev sahibi yetkisi gerekli",
	"auth.invalid_credentials":       "geçersiz e-posta veya şifre",
	"auth.password_too_short":        "şifre en az 6 karakter olmalıdır",
	"auth.required":                  "kimlik doğrulama gerekli",
	"auth.session_expired":           "oturum süresi doldu, lütfen tekrar giriş yapın",
	"booking.already_reviewed":       "bu rezervasyonu zaten değerlendirdiniz",
	"booking.cancel_reason_required": "iptal nedeni gereklidir",
	"booking.capacity_exceeded":      "bu ilan için maksimum misafir sayısı %d",
	"booking.created":                "rezervasyon başarıyla oluşturuldu",
	"booking.deleted":                "rezervasyon silindi",
	"booking.end_date_required":      "konaklama rezervasyonları için bitiş tarihi gereklidir",
	"booking.experience_required":    "deneyim rezervasyonları için deneyim kimliği gereklidir",
	"booking.guest_count_invalid":    "misafir sayısı en az 1 olmalıdır",
	"booking.invalid_payment_method": "geçersiz ödeme yöntemi",
	"booking.invalid_payment_status": "geçersiz ödeme durumu",
	"booking.invalid_status":         "geçersiz rezervasyon durumu",
	"booking.invalid_type":           "rezervasyon türü property veya experience olmalıdır",
	"booking.not_found":              "rezervasyon bulunamadı",
	"booking.payment_updated":        "ödeme durumu güncellendi",
	"booking.property_required":      "konaklama rezervasyonları için mülk kimliği gereklidir",
	"booking.start_date_required":    "başlangıç tarihi gereklidir",
	"booking.status_updated":         "rezervasyon durumu güncellendi",
	"booking.time_slot_required":     "deneyim rezervasyonları için başlangıç ve bitiş saati gereklidir",
	"daterange.invalid":              "bitiş tarihi başlangıç tarihinden sonra olmalıdır",
	"experience.not_found":           "deneyim bulunamadı",
	"guest.not_found":                "misafir bulunamadı",
	"host.not_found":                 "ev sahibi bulunamadı",
	"listing.deactivated":            "ilan rezervasyonları olduğu için pasif hale getirildi",
	"listing.deleted":                "ilan silindi",
	"listing.image_not_found":        "görsel bulunamadı",
	"listing.image_removed":          "görsel silindi",
	"listing.image_required":         "bir görsel dosyası gereklidir",
	"listing.image_type":             "yalnızca görsel dosyaları yüklenebilir",
	"listing.image_too_large":        "görsel en fazla %d MB olabilir",
	"listing.inactive":               "bu ilan rezervasyon kabul etmiyor",
	"listing.invalid_kind":           "ilan türü property veya experience olmalıdır",
	"listing.max_guests":             "maksimum misafir sayısı en az 1 olmalıdır",
	"listing.not_found":              "ilan bulunamadı",
	"listing.not_owned":              "yalnızca kendi ilanlarınızı yönetebilirsiniz",
	"listing.title_required":         "başlık gereklidir",
	"listing.updated":                "ilan başarıyla güncellendi",
	"money.invalid_currency":         "para birimi ₺, $, €, £ değerlerinden biri olmalıdır",
	"money.negative_amount":          "tutar negatif olamaz",
	"property.not_found":             "mülk bulunamadı",
	"request.field_invalid":          "%s geçersiz (%s)",
	"request.invalid_date":           "tarihler YYYY-AA-GG veya RFC 3339 biçiminde olmalıdır",
	"request.malformed":              "istek gövdesi hatalı",
	"review.comment_too_short":       "yorum en az 3 karakter olmalıdır",
	"review.completed_stay_required": "bu değerlendirme için tamamlanmış bir rezervasyon gereklidir",
	"review.created":                 "değerlendirme başarıyla oluşturuldu",
	"review.delete_forbidden":        "bu değerlendirmeyi yalnızca yazarı veya bir yönetici silebilir",
	"review.deleted":                 "değerlendirme silindi",
	"review.invalid_booking":         "geçersiz rezervasyon",
	"review.invalid_rating":          "puan 1 ile 5 arasında bir tam sayı olmalıdır",
	"review.invalid_type":            "değerlendirme türü property, experience, host veya guest olmalıdır",
	"review.not_found":               "değerlendirme bulunamadı",
	"review.private":                 "bu değerlendirmeyi görüntüleme yetkiniz yok",
	"review.rating_comment_required": "puan ve yorum gereklidir",
	"review.respond_forbidden":       "bu değerlendirmeye yalnızca değerlendirilen ev sahibi yanıt verebilir",
	"review.response_required":       "yanıt yorumu gereklidir",
	"review.target_required":         "değerlendirme hedefi gereklidir",
	"review.visibility_required":     "görünürlük belirtilmelidir",
	"server.error":                   "sunucu hatası",
	"storage.unavailable":            "görsel depolama yapılandırılmamış",
	"store.concurrent_update":        "kayıt başka bir istek tarafından değiştirildi, lütfen tekrar deneyin",
	"user.email_required":            "e-posta gereklidir",
	"user.email_taken":               "bu e-posta adresi zaten kullanılıyor",
	"user.invalid_role":              "geçersiz rol",
	"user.name_required":             "ad gereklidir",
	"user.not_found":                 "kullanıcı bulunamadı",
	"user.role_updated":              "kullanıcı rolü güncellendi",
}

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for code, text := range turkish {
		if err := b.SetString(language.Turkish, code, text); err != nil {
			panic(err)
		}
	}
	return b
}

// preferredLanguage picks the best supported tag for an Accept-Language header.
func preferredLanguage(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, confidence := languageMatcher.Match(tags...)
	if confidence == language.No {
		return language.English
	}
	return supportedLanguages[idx]
}

// translate renders code in tag, falling back to the English format.
func translate(tag language.Tag, code, format string, args ...any) string {
	if tag != language.English {
		if _, ok := turkish[code]; ok {
			return message.NewPrinter(tag, message.Catalog(messages)).Sprintf(code, args...)
		}
	}
	return message.NewPrinter(language.English).Sprintf(format, args...)
}
