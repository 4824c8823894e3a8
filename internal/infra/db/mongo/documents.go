package mongo

import (
	"time"

	"staybook/internal/domain/shared/money"
	"staybook/internal/pkg/apperror"
)

const (
	usersCollection    = "agg_user"
	listingsCollection = "agg_listing"
	bookingsCollection = "agg_booking"
	reviewsCollection  = "agg_review"
)

var ErrConcurrentUpdate = apperror.Invalid("store.concurrent_update", "the record was changed by another request, please retry")

type moneyDocument struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

func newMoneyDocument(m money.Money) moneyDocument {
	return moneyDocument{Amount: m.Amount, Currency: m.Currency}
}

func (d moneyDocument) toMoney() money.Money {
	return money.Money{Amount: d.Amount, Currency: d.Currency}
}

func timeToTimestamp(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func timestampToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
