package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// alignSpec is one "<kind><size>:<abi>:<pref>" entry, all values in bits.
type alignSpec struct {
	Size uint32
	ABI  uint32
	Pref uint32
}

// Spec is the parsed form of an LLVM datalayout string.
type Spec struct {
	LittleEndian bool
	PtrBits      uint32
	PtrABI       uint32
	Ints         []alignSpec
	Floats       []alignSpec
	Vectors      []alignSpec
	AggregateABI uint32
	StackAlign   uint32
	NativeInts   []uint32
}

// ParseSpec parses a datalayout string such as X86_64DataLayout.
// Unknown components are ignored.
func ParseSpec(s string) (Spec, error) {
	spec := Spec{LittleEndian: true, PtrBits: 64, PtrABI: 64}
	for _, part := range strings.Split(s, "-") {
		if part == "" {
			continue
		}
		switch part[0] {
		case 'e':
			spec.LittleEndian = true
		case 'E':
			spec.LittleEndian = false
		case 'p':
			rest := part[1:]
			if i := strings.IndexByte(rest, ':'); i >= 0 {
				rest = rest[i+1:] // drop the address space
			}
			nums, err := parseNums(rest, ':')
			if err != nil {
				return Spec{}, fmt.Errorf("datalayout %q: %w", part, err)
			}
			if len(nums) > 0 {
				spec.PtrBits = nums[0]
			}
			if len(nums) > 1 {
				spec.PtrABI = nums[1]
			}
		case 'i', 'f', 'v':
			nums, err := parseNums(part[1:], ':')
			if err != nil || len(nums) < 2 {
				return Spec{}, fmt.Errorf("datalayout %q: malformed alignment entry", part)
			}
			entry := alignSpec{Size: nums[0], ABI: nums[1], Pref: nums[1]}
			if len(nums) > 2 {
				entry.Pref = nums[2]
			}
			switch part[0] {
			case 'i':
				spec.Ints = append(spec.Ints, entry)
			case 'f':
				spec.Floats = append(spec.Floats, entry)
			default:
				spec.Vectors = append(spec.Vectors, entry)
			}
		case 'a':
			nums, err := parseNums(part[1:], ':')
			if err != nil {
				return Spec{}, fmt.Errorf("datalayout %q: %w", part, err)
			}
			if len(nums) > 1 {
				spec.AggregateABI = nums[1]
			}
		case 'S':
			n, err := strconv.ParseUint(part[1:], 10, 32)
			if err != nil {
				return Spec{}, fmt.Errorf("datalayout %q: %w", part, err)
			}
			spec.StackAlign = uint32(n)
		case 'n':
			nums, err := parseNums(part[1:], ':')
			if err != nil {
				return Spec{}, fmt.Errorf("datalayout %q: %w", part, err)
			}
			spec.NativeInts = nums
		}
	}
	return spec, nil
}

func parseNums(s string, sep byte) ([]uint32, error) {
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, string(sep))
	out := make([]uint32, 0, len(fields))
	for _, f := range fields {
		if f == "" {
			out = append(out, 0)
			continue
		}
		n, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return nil, err
		}
		out = append(out, uint32(n))
	}
	return out, nil
}

// intAlign picks the ABI alignment in bits for an integer width: an exact
// entry if present, else the smallest wider entry, else the widest one.
func (s *Spec) intAlign(bits uint32) uint32 {
	var best *alignSpec
	var widest *alignSpec
	for i := range s.Ints {
		e := &s.Ints[i]
		if e.Size == bits {
			return e.ABI
		}
		if e.Size > bits && (best == nil || e.Size < best.Size) {
			best = e
		}
		if widest == nil || e.Size > widest.Size {
			widest = e
		}
	}
	if best != nil {
		return best.ABI
	}
	if widest != nil {
		return widest.ABI
	}
	return bits
}

func (s *Spec) floatAlign(bits uint32) uint32 {
	for _, e := range s.Floats {
		if e.Size == bits {
			return e.ABI
		}
	}
	return bits
}

func (s *Spec) vectorAlign(bits uint32) uint32 {
	for _, e := range s.Vectors {
		if e.Size == bits {
			return e.ABI
		}
	}
	return nextPow2(bits)
}

func nextPow2(n uint32) uint32 {
	if n <= 1 {
		return 1
	}
	p := uint32(1)
	for p < n {
		p <<= 1
	}
	return p
}
