package response

import (
	"bookstore-choreography/internal/usecase/queries"

	"github.com/shopspring/decimal"
)

type PaymentResponse struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"orderId"`
	BookID    int64           `json:"bookId"`
	Quantity  int             `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt int64           `json:"createdAt"`
}

func FromPaymentViews(vs []*queries.PaymentView) []*PaymentResponse {
	res := make([]*PaymentResponse, len(vs))
	for i, v := range vs {
		res[i] = &PaymentResponse{
			ID:        v.ID,
			OrderID:   v.OrderID,
			BookID:    v.BookID,
			Quantity:  v.Quantity,
			Amount:    v.Amount,
			CreatedAt: v.CreatedAt.Unix(),
		}
	}
	return res
}

type PaymentAcceptedResponse struct {
	Status    string `json:"status"`
	PaymentID int64  `json:"paymentId,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
}
