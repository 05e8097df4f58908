package catalog

import "github.com/shopspring/decimal"

type Kind string

const (
	KindService Kind = "service"
	KindProduct Kind = "product"
)

func (k Kind) Valid() bool { return k == KindService || k == KindProduct }

type Service struct {
	ID          int64
	Name        string
	Price       decimal.Decimal
	DurationMin int
	OnPromotion bool
	PromoPrice  decimal.NullDecimal
	Active      bool
}

type Product struct {
	ID          int64
	Name        string
	Price       decimal.Decimal
	Stock       int
	StockMin    int
	OnPromotion bool
	PromoPrice  decimal.NullDecimal
	Active      bool
}

// EffectivePrice is the promotional price when the service is flagged and a
// promo price is set, otherwise the list price.
func (s Service) EffectivePrice() decimal.Decimal {
	return effective(s.Price, s.OnPromotion, s.PromoPrice)
}

func (p Product) EffectivePrice() decimal.Decimal {
	return effective(p.Price, p.OnPromotion, p.PromoPrice)
}

func effective(list decimal.Decimal, onPromo bool, promo decimal.NullDecimal) decimal.Decimal {
	if onPromo && promo.Valid {
		return promo.Decimal
	}
	return list
}
