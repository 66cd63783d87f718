package integrity

import "time"

// DigestTime is the per-message checksum: seconds into the day of the
// message timestamp. Date-insensitive on purpose; the browser client
// computes the same formula and the two must agree bit for bit.
func DigestTime(t time.Time) int64 {
	return int64(t.Hour())*3600 + int64(t.Minute())*60 + int64(t.Second())
}

// DigestDialog is the list-level digest: partner id plus the time digest of
// that conversation's latest message. This is a different quantity from the
// full-timeline sum kept by DialogIntegrity; keep them apart.
func DigestDialog(dialogId int64, t time.Time) int64 {
	return dialogId + DigestTime(t)
}
