package testutil

import "time"

// Fixed identifiers and clock for deterministic tests.
const (
	TestClientID      = "00000000-0000-0000-0000-000000000001"
	TestOtherClientID = "00000000-0000-0000-0000-000000000002"
	TestApplicationID = "00000000-0000-0000-0000-000000000010"
	TestUserID        = "00000000-0000-0000-0000-000000000020"
)

// TestDocument is a national ID accepted by the stub risk gateway.
const TestDocument = "71234567"

var TestNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
