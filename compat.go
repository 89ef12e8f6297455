package fsblob

// quirkName is the one file the reference tool chain writes with a
// non-standard name field.
const quirkName = "tile1.tg~"

// applyReferenceQuirk reproduces the reference tool's output for tile1.tg~:
// the last two bytes of its name field are 0x6C, 0x00 instead of NUL padding.
// Every other name is left untouched.
func applyReferenceQuirk(h *Header, storedName string) bool {
	if storedName != quirkName {
		return false
	}
	h.Name[NameSize-2] = 0x6C
	h.Name[NameSize-1] = 0x00
	return true
}
