package seedr

const (
	// ClientID is the public device-flow client identifier used by
	// third-party Seedr frontends. There is no client secret.
	ClientID = "seedr_xbmc"

	// VerificationURL is where the user enters the user code to approve the
	// device.
	VerificationURL = "https://www.seedr.cc/devices"

	// DefaultBaseURL is the production API host.
	DefaultBaseURL = "https://www.seedr.cc"
)

const (
	deviceCodePath = "/api/device/code"
	authorizePath  = "/api/device/authorize"
	resourcePath   = "/oauth_test/resource.php"
)
