package failure

// Kind classifies a failure by the layer that produced it.
type Kind int

const (
	OK Kind = iota

	// Argument errors.
	NoArgs
	InvalidArgs
	InvalidCommand

	// Network and transport errors.
	NetworkIO
	InvalidAddress
	NetRecvFailed
	SockInitFailed
	ConnectionFailed
	TorConnectionFailed
	SocketCreationFailed
	AddressResolutionFailed

	// Protocol and URI errors.
	InvalidURI
	BadResponse
	InvalidScheme
	InvalidHeader
	HTTPRequestFailed
	RedirectLimit
	RedirectFailed

	// Filesystem and resource errors.
	IO
	OutOfMemory
	NoPermission
	FileNotFound

	kindCount
)

var baseMessages = [kindCount]string{
	OK: "No error",

	NoArgs:         "No arguments provided",
	InvalidArgs:    "Invalid arguments",
	InvalidCommand: "Invalid command",

	NetworkIO:               "Network I/O error",
	InvalidAddress:          "Invalid network address",
	NetRecvFailed:           "Failed to receive data from socket",
	SockInitFailed:          "Failed to initialize socket subsystem",
	ConnectionFailed:        "Failed to connect to host",
	TorConnectionFailed:     "Failed to connect to TOR proxy",
	SocketCreationFailed:    "Failed to create socket",
	AddressResolutionFailed: "Failed to resolve address",

	InvalidURI:        "Invalid URL",
	BadResponse:       "Bad or malformed response",
	InvalidScheme:     "Unsupported URL method or schema",
	InvalidHeader:     "Invalid HTTP header",
	HTTPRequestFailed: "HTTP request failed",
	RedirectLimit:     "Exceeded maximum HTTP redirects",
	RedirectFailed:    "Failed to follow HTTP redirect",

	IO:           "I/O error",
	OutOfMemory:  "Out of memory",
	NoPermission: "Permission denied",
	FileNotFound: "File not found",
}

const unknownMessage = "Unknown error"

// Valid reports whether k is a member of the enumeration.
func (k Kind) Valid() bool {
	return k >= OK && k < kindCount
}

// String returns the static base message for k.
func (k Kind) String() string {
	if !k.Valid() {
		return unknownMessage
	}
	return baseMessages[k]
}

// Error lets a Kind be used as an errors.Is target.
func (k Kind) Error() string {
	return k.String()
}
