package ports

// Notifier enqueues out-of-band messages for asynchronous delivery.
//
// Enqueue calls never block on the network and never report delivery failure
// to the caller: notification dispatch is fire-and-forget relative to every
// transactional path (delivery errors are logged by the dispatcher workers).
type Notifier interface {
	EnqueueEmail(to, subject, htmlBody string)
	EnqueueSMS(mobile, message string)
}
