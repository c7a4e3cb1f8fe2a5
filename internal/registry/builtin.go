package registry

// Default is the charset used when none is configured.
const Default = "detailed"

func init() {
	Register("minimal", " ░▒▓█")
	Register("simple", " .:-=+*#%@")
	Register("detailed", " .'`^\",:;Il!i><~+_-?][}{1)(|\\/tfjrxnuvczXYUJCLQ0OZmwqpdbkhao*#MW&8%B@$")
	// Dense-first ramp: renders as a negative on dark terminals.
	Register("extended", "$@B%8&WM#*oahkbdpqwmZO0QLCJUYXzcvunxrjft/\\|()1{}[]?-_+~<>i!lI;:,\"^`'. ")
	Register("block", " █")
	Register("art", " ♥♦♣♠•◘○◙♂♀♪♫☼►◄↕‼¶§▬↨↑↓→←∟↔▲▼")
}
