package finance

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Money is a signed amount in pence. Positive costs are spending, negative
// costs are refunds.
type Money int64

const (
	MoneyZero      Money = 0
	MoneyUndefined Money = -1 << 63
)

// Pounds builds an amount from whole pounds and pence.
func Pounds(pounds, pence int64) Money { return Money(pounds*100 + pence) }

func (m Money) String() string {
	if m == MoneyUndefined {
		return "undefined"
	}
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s£%s.%02d", sign, humanize.Comma(v/100), v%100)
}

type Expenditure uint8

const (
	ExpenditureRideConstruction Expenditure = iota
	ExpenditureRideRunningCosts
	ExpenditureLandPurchase
	ExpenditureLandscaping
	ExpenditureParkEntranceTickets
	ExpenditureParkRideTickets
	ExpenditureShopSales
	ExpenditureShopStock
	ExpenditureFoodDrinkSales
	ExpenditureFoodDrinkStock
	ExpenditureWages
	ExpenditureMarketing
	ExpenditureResearch
	ExpenditureInterest

	ExpenditureCount
)

var expenditureNames = [ExpenditureCount]string{
	"ride_construction",
	"ride_running_costs",
	"land_purchase",
	"landscaping",
	"park_entrance_tickets",
	"park_ride_tickets",
	"shop_sales",
	"shop_stock",
	"food_drink_sales",
	"food_drink_stock",
	"wages",
	"marketing",
	"research",
	"interest",
}

func (e Expenditure) String() string {
	if e >= ExpenditureCount {
		return fmt.Sprintf("expenditure(%d)", uint8(e))
	}
	return expenditureNames[e]
}
