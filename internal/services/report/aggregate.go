package report

import (
	"cmp"
	"slices"
	"time"

	"water-delivery/internal/models"
	"water-delivery/internal/money"
)

// orderAgg is an order rebuilt from its report lines
type orderAgg struct {
	ID            int64
	CreatedAt     time.Time
	CustomerName  string
	Address       string
	Status        models.OrderStatus
	PaymentMethod models.PaymentMethod
	ChangeDueFor  *money.Amount
	Total         money.Amount
	Items         int
}

// change is what a cash customer gets back. Orders without a tendered amount
// contribute nothing.
func (o orderAgg) change() (money.Amount, bool) {
	if o.ChangeDueFor == nil {
		return 0, false
	}
	return o.ChangeDueFor.SubClamped(o.Total), true
}

func (o orderAgg) paymentLabel() string {
	if o.PaymentMethod == "" {
		return UnspecifiedPayment
	}
	return string(o.PaymentMethod)
}

// groupOrders folds lines into orders, newest first
func groupOrders(lines []Line) []orderAgg {
	index := map[int64]int{}
	var orders []orderAgg

	for _, l := range lines {
		i, ok := index[l.OrderID]
		if !ok {
			i = len(orders)
			index[l.OrderID] = i
			orders = append(orders, orderAgg{
				ID:            l.OrderID,
				CreatedAt:     l.CreatedAt,
				CustomerName:  l.CustomerName,
				Address:       l.Address,
				Status:        l.Status,
				PaymentMethod: l.PaymentMethod,
				ChangeDueFor:  l.ChangeDueFor,
			})
		}
		subtotal, _ := l.UnitPrice.Mul(int64(l.Quantity))
		orders[i].Total = orders[i].Total.Add(subtotal)
		orders[i].Items += l.Quantity
	}

	slices.SortFunc(orders, func(a, b orderAgg) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return orders
}

func summarize(orders []orderAgg) Summary {
	var s Summary
	for _, o := range orders {
		s.OrderCount++
		s.TotalRevenue = s.TotalRevenue.Add(o.Total)
		s.ItemsSold += o.Items

		change, ok := o.change()
		if ok {
			s.TotalChangeDue = s.TotalChangeDue.Add(change)
		}
		if o.PaymentMethod == models.PaymentCash {
			s.CashRevenue = s.CashRevenue.Add(o.Total)
			s.CashChangeIssued = s.CashChangeIssued.Add(change)
		}
	}
	s.CashTendered = s.CashRevenue.Add(s.CashChangeIssued)
	s.AverageOrder = averageOf(s.TotalRevenue, s.OrderCount)
	return s
}

// averageOf rounds half up; zero orders average to zero
func averageOf(total money.Amount, count int) money.Amount {
	if count == 0 {
		return 0
	}
	n := int64(count)
	return money.Amount((total.Int64() + n/2) / n)
}

func byStatus(orders []orderAgg) []StatusTotal {
	totals := map[models.OrderStatus]*StatusTotal{}
	for _, o := range orders {
		t, ok := totals[o.Status]
		if !ok {
			t = &StatusTotal{Status: o.Status}
			totals[o.Status] = t
		}
		t.Count++
		t.TotalRevenue = t.TotalRevenue.Add(o.Total)
	}

	out := make([]StatusTotal, 0, len(totals))
	for _, status := range models.AllStatuses {
		if t, ok := totals[status]; ok {
			out = append(out, *t)
		}
	}
	// stable keeps lifecycle order between equal counts
	slices.SortStableFunc(out, func(a, b StatusTotal) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return out
}

func byPayment(orders []orderAgg) []PaymentTotal {
	totals := map[string]*PaymentTotal{}
	for _, o := range orders {
		label := o.paymentLabel()
		t, ok := totals[label]
		if !ok {
			t = &PaymentTotal{PaymentMethod: label}
			totals[label] = t
		}
		t.Count++
		t.TotalRevenue = t.TotalRevenue.Add(o.Total)
		if change, ok := o.change(); ok {
			t.TotalChangeDue = t.TotalChangeDue.Add(change)
		}
	}

	out := make([]PaymentTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b PaymentTotal) int {
		if c := cmp.Compare(b.TotalRevenue, a.TotalRevenue); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.PaymentMethod, b.PaymentMethod)
	})
	return out
}

func topProducts(lines []Line, limit int) []ProductTotal {
	totals := map[int64]*ProductTotal{}
	for _, l := range lines {
		t, ok := totals[l.ProductID]
		if !ok {
			t = &ProductTotal{ProductID: l.ProductID, ProductName: l.ProductName}
			totals[l.ProductID] = t
		}
		subtotal, _ := l.UnitPrice.Mul(int64(l.Quantity))
		t.QtySold += l.Quantity
		t.TotalRevenue = t.TotalRevenue.Add(subtotal)
	}

	out := make([]ProductTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b ProductTotal) int {
		if c := cmp.Compare(b.TotalRevenue, a.TotalRevenue); c != 0 {
			return c
		}
		if c := cmp.Compare(b.QtySold, a.QtySold); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func orderList(orders []orderAgg, limit int) []OrderSummary {
	if len(orders) > limit {
		orders = orders[:limit]
	}

	out := make([]OrderSummary, len(orders))
	for i, o := range orders {
		out[i] = OrderSummary{
			ID:            o.ID,
			CreatedAt:     o.CreatedAt,
			CustomerName:  o.CustomerName,
			Address:       o.Address,
			Status:        o.Status,
			PaymentMethod: o.paymentLabel(),
			Total:         o.Total,
			ChangeDueFor:  o.ChangeDueFor,
			ItemCount:     o.Items,
		}
		if change, ok := o.change(); ok {
			out[i].Change = &change
		}
	}
	return out
}
