package validation

import (
	"fmt"

	validatorv10 "github.com/go-playground/validator/v10"
)

// minimum chargeable amount in currency subunits (Razorpay rejects below ₹1)
const minLinkAmount = 100

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	v.RegisterStructValidation(createPaymentLinkStructValidation, CreatePaymentLinkRequest{})

	return v
}

func createPaymentLinkStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CreatePaymentLinkRequest)

	if req.Amount > 0 && req.Amount < minLinkAmount {
		sl.ReportError(req.Amount, "amount", "Amount", "amount_min",
			fmt.Sprintf("amount %d below minimum %d subunits", req.Amount, minLinkAmount))
	}
}
