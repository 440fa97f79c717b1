package domain

// DeliveryReport summarizes a best-effort fan-out to participants.
type DeliveryReport struct {
	Delivered int
	Total     int
}

// Record counts one attempt; a nil err counts as delivered.
func (r *DeliveryReport) Record(err error) {
	r.Total++
	if err == nil {
		r.Delivered++
	}
}

func (r DeliveryReport) Failed() int {
	return r.Total - r.Delivered
}

func (r DeliveryReport) Complete() bool {
	return r.Delivered == r.Total
}
