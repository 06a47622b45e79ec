package node

// Dealer is a work queue of signatures: each signature is handed out once,
// however often it is requested. It is not safe for concurrent use.
type Dealer struct {
	order []Signature
	needs map[Signature]struct{}
	done  map[Signature]struct{}
}

// NextNeeds returns the oldest pending signature and marks it done.
func (d *Dealer) NextNeeds() (sig Signature, ok bool) {
	for len(d.order) > 0 {
		sig, d.order = d.order[0], d.order[1:]

		if _, pending := d.needs[sig]; !pending {
			continue
		}

		d.Done(sig)

		return sig, true
	}

	return Signature{}, false
}

// Needs queues sig unless it was already handed out.
func (d *Dealer) Needs(sig Signature) {
	if d.needs == nil {
		d.needs = make(map[Signature]struct{})
	}

	if _, exists := d.done[sig]; exists {
		return
	}

	if _, exists := d.needs[sig]; !exists {
		d.needs[sig] = struct{}{}
		d.order = append(d.order, sig)
	}
}

// Done marks sig as handled.
func (d *Dealer) Done(sig Signature) {
	if d.done == nil {
		d.done = make(map[Signature]struct{})
	}

	delete(d.needs, sig)
	d.done[sig] = struct{}{}
}

// Len returns the number of handled signatures.
func (d *Dealer) Len() int {
	return len(d.done)
}
