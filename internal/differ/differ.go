// Package differ implements yatta's byte-level differential encoder and
// patcher: it reduces the transform from a source byte range to a target
// byte range down to a compact stream of Copy/Insert/Repeat instructions,
// and replays that stream to reconstruct the target from the source.
package differ

import (
	"encoding/binary"
	"sync"

	"github.com/Yattabyte/yatta/internal/lz4codec"
	"github.com/Yattabyte/yatta/internal/threader"
)

const (
	windowSize  = 4096
	diffTitle   = "yatta diff"
	headerSize  = 16 + 8 // title + targetSize
	minMatchLen = 4 * 8  // 4 words of 8 bytes
	minRepeat   = 36
)

type matchInfo struct {
	length uint64
	start1 uint64 // offset into source (A)
	start2 uint64 // offset into target (B)
}

// findMatchingRegions scans window A against window B (same length) and
// returns the best-scoring set of runs of matching 8-byte words, each at
// least minMatchLen bytes long. "Best" means the starting offset in A whose
// candidate run set has the largest total matched length; ties keep the
// first such offset encountered.
func findMatchingRegions(a, b []byte) []matchInfo {
	var bestMatch []matchInfo
	var largestMatch uint64

	words := len(a) / 8
	for w := 0; w < words; w++ {
		indexByte := uint64(w * 8)
		subA := a[indexByte:]
		length := len(subA)
		if len(b) < length {
			length = len(b)
		}

		var matchCount uint64
		var sumMatches uint64
		var matches []matchInfo
		var ind int
		for ind = 0; ind+8 <= length; ind += 8 {
			av := binary.LittleEndian.Uint64(subA[ind : ind+8])
			bv := binary.LittleEndian.Uint64(b[ind : ind+8])
			if av == bv {
				matchCount++
				continue
			}
			if matchCount >= 4 {
				matchLength := matchCount * 8
				matches = append(matches, matchInfo{
					length: matchLength,
					start1: uint64(ind) + indexByte - matchLength,
					start2: uint64(ind) - matchLength,
				})
				sumMatches += matchCount
			}
			matchCount = 0
		}
		if matchCount >= 4 {
			matchLength := matchCount * 8
			matches = append(matches, matchInfo{
				length: matchLength,
				start1: uint64(ind) + indexByte - matchLength,
				start2: uint64(ind) - matchLength,
			})
			sumMatches += matchCount
		}

		if sumMatches > largestMatch {
			largestMatch = sumMatches
			bestMatch = matches
		}
	}
	return bestMatch
}

type windowInfo struct {
	size   uint64
	indexA uint64
	indexB uint64
}

type windowMatch struct {
	window  windowInfo
	matches []matchInfo
}

// splitAndMatchRanges partitions source and target into aligned 4096-byte
// windows and finds matching regions within each, fanning the per-window
// scans out across a worker pool.
func splitAndMatchRanges(source, target []byte) []windowMatch {
	pool := threader.New(0)
	defer pool.Shutdown()

	sizeA := uint64(len(source))
	sizeB := uint64(len(target))

	var mu sync.Mutex
	var results []windowMatch

	indexA, indexB := uint64(0), uint64(0)
	for indexA < sizeA && indexB < sizeB {
		remA := sizeA - indexA
		remB := sizeB - indexB
		size := uint64(windowSize)
		if remA < size {
			size = remA
		}
		if remB < size {
			size = remB
		}

		ia, ib, sz := indexA, indexB, size
		pool.Submit(func() {
			winA := source[ia : ia+sz]
			winB := target[ib : ib+sz]
			matches := findMatchingRegions(winA, winB)
			for i := range matches {
				matches[i].start1 += ia
				matches[i].start2 += ib
			}
			mu.Lock()
			results = append(results, windowMatch{
				window:  windowInfo{size: sz, indexA: ia, indexB: ib},
				matches: matches,
			})
			mu.Unlock()
		})

		indexA += size
		indexB += size
	}
	pool.Wait()

	return results
}

// Diff generates a patch instruction buffer transforming source into
// target. It reports ok=false when both source and target are empty, or
// when the final LZ4 compression step fails.
func Diff(source, target []byte) (out []byte, ok bool) {
	if len(source) == 0 && len(target) == 0 {
		return nil, false
	}

	windows := splitAndMatchRanges(source, target)

	var mu sync.Mutex
	var instructions []instruction

	indexB := uint64(0)
	for _, wm := range windows {
		win := wm.window
		if win.indexB+win.size > indexB {
			indexB = win.indexB + win.size
		}
		matches := wm.matches

		if len(matches) == 0 {
			data := make([]byte, win.size)
			copy(data, target[win.indexB:win.indexB+win.size])
			instructions = append(instructions, insertInstruction(win.indexB, data))
			continue
		}

		lastMatchEnd := win.indexB
		for _, m := range matches {
			if newLen := m.start2 - lastMatchEnd; newLen > 0 {
				data := make([]byte, newLen)
				copy(data, target[lastMatchEnd:lastMatchEnd+newLen])
				instructions = append(instructions, insertInstruction(lastMatchEnd, data))
			}
			instructions = append(instructions, copyInstruction(m.start2, m.start1, m.start1+m.length))
			lastMatchEnd = m.start2 + m.length
		}

		if newLen := (win.indexB + win.size) - lastMatchEnd; newLen > 0 {
			data := make([]byte, newLen)
			copy(data, target[lastMatchEnd:lastMatchEnd+newLen])
			instructions = append(instructions, insertInstruction(lastMatchEnd, data))
		}
	}

	sizeB := uint64(len(target))
	if indexB < sizeB {
		data := make([]byte, sizeB-indexB)
		copy(data, target[indexB:])
		instructions = append(instructions, insertInstruction(indexB, data))
	}

	instructions = promoteRepeats(instructions, &mu)

	var patchSize uint64
	for _, in := range instructions {
		patchSize += in.size()
	}
	patchBuffer := make([]byte, patchSize)
	var byteIndex uint64
	for _, in := range instructions {
		in.write(patchBuffer, byteIndex)
		byteIndex += in.size()
	}

	compressed, ok := lz4codec.Compress(patchBuffer)
	if !ok {
		return nil, false
	}

	result := make([]byte, headerSize+len(compressed))
	copy(result[0:16], diffTitle)
	binary.LittleEndian.PutUint64(result[16:24], sizeB)
	copy(result[headerSize:], compressed)
	return result, true
}

// promoteRepeats runs the repeat-promotion pass: any Insert whose payload
// exceeds minRepeat bytes is scanned for runs of a single repeated byte
// longer than minRepeat, splitting the Insert into a (possibly empty)
// leading Insert, a Repeat, and a trailing Insert that continues scanning
// from where the run ended. Each Insert is scanned independently (in
// parallel); the result slice is appended to under a shared lock.
func promoteRepeats(instructions []instruction, mu *sync.Mutex) []instruction {
	pool := threader.New(0)
	defer pool.Shutdown()

	out := make([]instruction, len(instructions))
	copy(out, instructions)

	for i := range instructions {
		if instructions[i].Tag != tagInsert {
			continue
		}
		idx := i
		original := instructions[i]
		pool.Submit(func() {
			promoted := promoteOne(original)
			mu.Lock()
			out[idx] = promoted.head
			out = append(out, promoted.extra...)
			mu.Unlock()
		})
	}
	pool.Wait()

	return out
}

type promotedInsert struct {
	head  instruction // the (possibly shrunk) original insert, trailing remainder
	extra []instruction
}

// promoteOne scans a single Insert for repeat runs and produces the
// replacement set of instructions, matching the reference prefilter+scan
// shape exactly: at each candidate start x, check data[x+36]==data[x]
// before walking forward to find the run's end.
func promoteOne(in instruction) promotedInsert {
	data := in.Data
	if uint64(len(data)) <= minRepeat {
		return promotedInsert{head: in}
	}

	var extra []instruction
	baseIndex := in.Index
	x := 0
	max := len(data) - (minRepeat + 1)
	if max < 0 {
		max = 0
	}

	for x < max {
		valueAtX := data[x]
		if data[x+minRepeat] != valueAtX {
			x++
			continue
		}

		y := x + 1
		for y < max && data[y] == valueAtX {
			y++
		}

		length := y - x
		if length > minRepeat {
			if x > 0 {
				prefix := make([]byte, x)
				copy(prefix, data[:x])
				extra = append(extra, insertInstruction(baseIndex, prefix))
			}
			extra = append(extra, repeatInstruction(baseIndex+uint64(x), uint64(length), valueAtX))

			baseIndex += uint64(x + length)
			data = data[y:]
			x = 0
			max = len(data) - (minRepeat + 1)
			if max < 0 {
				max = 0
			}
			continue
		}
		x = y
	}

	return promotedInsert{
		head:  insertInstruction(baseIndex, data),
		extra: extra,
	}
}

// Patch reconstructs the target buffer by replaying diffBytes (produced by
// Diff) against source.
func Patch(source, diffBytes []byte) (out []byte, ok bool) {
	if len(diffBytes) == 0 {
		return nil, false
	}
	if uint64(len(diffBytes)) < headerSize {
		return nil, false
	}
	var gotTitle [16]byte
	copy(gotTitle[:], diffBytes[0:16])
	var wantTitle [16]byte
	copy(wantTitle[:], diffTitle)
	if gotTitle != wantTitle {
		return nil, false
	}
	targetSize := binary.LittleEndian.Uint64(diffBytes[16:24])

	patchBuffer, ok := lz4codec.Decompress(diffBytes[headerSize:])
	if !ok {
		return nil, false
	}

	target := make([]byte, targetSize)
	var byteIndex uint64
	for byteIndex < uint64(len(patchBuffer)) {
		tag := patchBuffer[byteIndex]
		byteIndex++

		in, next, err := readInstruction(tag, patchBuffer, byteIndex)
		if err != nil {
			return nil, false
		}
		byteIndex = next
		in.execute(target, source)
	}

	return target, true
}
