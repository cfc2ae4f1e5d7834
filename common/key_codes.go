package common

// Key codes the preview host reacts to. They are GLFW key codes, which equal ASCII for
// letters, digits and space.
const (
	KeySpace = 32 // pause the orbit
	KeyA     = 65 // orbit left
	KeyC     = 67 // capture a frame
	KeyD     = 68 // orbit right
	KeyS     = 83 // move away
	KeyW     = 87 // move closer

	// Key0 is the first number-row key. The rest follow in order.
	Key0 = 48
)

// DigitKey returns the digit for a number-row key code and whether it is one.
func DigitKey(key int) (int, bool) {
	if key >= Key0 && key <= Key0+9 {
		return key - Key0, true
	}
	return 0, false
}
