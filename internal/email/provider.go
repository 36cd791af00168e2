package email

// Provider is the transactional email collaborator. Delivery is best-effort:
// reconciliation outcomes never depend on it.
type Provider interface {
	Send(email *Email) error
	Close() error
}
