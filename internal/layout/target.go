package layout

// X86_64DataLayout is the fixed little-endian x86-64 layout used for
// alignment computation. It is a module-wide constant, not a runtime option.
const X86_64DataLayout = "e-p:64:64:64-i1:8:8-i8:8:8-i16:16:16-i32:32:32-i64:64:64-f32:32:32-f64:64:64-v64:64:64-v128:128:128-a0:0:64-s0:64:64-f80:128:128-n8:16:32:64-S128"

// Target describes the ABI target triple and its data layout.
//
// Only x86_64-linux-gnu is implemented.
type Target struct {
	Triple     string // e.g. "x86_64-linux-gnu"
	DataLayout string // LLVM datalayout string
	PtrSize    int    // bytes
	PtrAlign   int    // bytes
}

func X86_64LinuxGNU() Target {
	return Target{
		Triple:     "x86_64-linux-gnu",
		DataLayout: X86_64DataLayout,
		PtrSize:    8,
		PtrAlign:   8,
	}
}
