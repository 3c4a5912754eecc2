package ir

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"
)

// Block is a basic block. Numeric names are implicit labels.
type Block struct {
	Name   string
	Instrs []Instr
}

// Terminated reports whether the block ends with a terminator.
func (b *Block) Terminated() bool {
	if b == nil || len(b.Instrs) == 0 {
		return false
	}
	return b.Instrs[len(b.Instrs)-1].Kind.IsTerminator()
}

// ImplicitLabel returns the numeric label of an implicitly named block.
func (b *Block) ImplicitLabel() (int, bool) {
	if b == nil || b.Name == "" {
		return 0, false
	}
	n, err := strconv.Atoi(b.Name)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Blocks is the growable block array of a function definition. Blocks are
// identified by position; InsertBlocksAt is the only operation that moves
// existing blocks.
type Blocks struct {
	list []*Block
}

// Len returns the number of blocks.
func (bs *Blocks) Len() int {
	return len(bs.list)
}

// At returns the block at i, or nil when out of range.
func (bs *Blocks) At(i BlockID) *Block {
	if i < 0 || int(i) >= len(bs.list) {
		return nil
	}
	return bs.list[i]
}

// All returns the blocks in order.
func (bs *Blocks) All() []*Block {
	return bs.list
}

// EnsureBlockCount grows the array to at least n empty blocks.
func (bs *Blocks) EnsureBlockCount(n int) {
	for len(bs.list) < n {
		bs.list = append(bs.list, &Block{})
	}
}

// InsertBlocksAt splices n empty blocks in front of position at. Every block
// reference at or after at, in every instruction of every block, is shifted
// by n so that it keeps pointing at the same block.
func (bs *Blocks) InsertBlocksAt(at BlockID, n int) error {
	if n <= 0 {
		return nil
	}
	if at < 0 || int(at) > len(bs.list) {
		return fmt.Errorf("insert blocks at %d: out of range [0,%d]", at, len(bs.list))
	}
	shift, err := safecast.Conv[int32](n)
	if err != nil {
		return fmt.Errorf("insert %d blocks: %w", n, err)
	}
	bs.remap(func(id BlockID) BlockID {
		if id >= at {
			return id + BlockID(shift)
		}
		return id
	})
	fresh := make([]*Block, n)
	for i := range fresh {
		fresh[i] = &Block{}
	}
	tail := append(fresh, bs.list[at:]...)
	bs.list = append(bs.list[:at:at], tail...)
	return nil
}

func (bs *Blocks) remap(f func(BlockID) BlockID) {
	for _, b := range bs.list {
		for i := range b.Instrs {
			b.Instrs[i].remapBlocks(f)
		}
	}
}

// BlockIDOf converts a position into a BlockID.
func BlockIDOf(i int) BlockID {
	id, err := safecast.Conv[int32](i)
	if err != nil {
		panic(fmt.Errorf("block index overflow: %w", err))
	}
	return BlockID(id)
}
