package transcript

// Group collapses consecutive same-speaker segments into dialogue blocks.
// A speaker of zero or less is read as speaker 1. Non-adjacent runs of the
// same speaker stay in separate blocks.
func Group(segments []Segment) []DialogueBlock {
	blocks := []DialogueBlock{}
	for i, seg := range segments {
		speaker := seg.Speaker
		if speaker <= 0 {
			speaker = 1
		}
		if n := len(blocks); n > 0 && blocks[n-1].Speaker == speaker {
			blocks[n-1].Segments = append(blocks[n-1].Segments, seg)
			continue
		}
		blocks = append(blocks, DialogueBlock{
			Speaker:  speaker,
			Segments: []Segment{seg},
			StartIdx: i,
		})
	}
	return blocks
}

// Flatten returns the segments of blocks in order.
func Flatten(blocks []DialogueBlock) []Segment {
	var out []Segment
	for _, b := range blocks {
		out = append(out, b.Segments...)
	}
	return out
}

// BlockOf returns the index of the block containing the segment at segIdx,
// or -1.
func BlockOf(blocks []DialogueBlock, segIdx int) int {
	for i, b := range blocks {
		if segIdx >= b.StartIdx && segIdx < b.StartIdx+len(b.Segments) {
			return i
		}
	}
	return -1
}
