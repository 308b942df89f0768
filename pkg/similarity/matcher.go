package similarity

// matchRatio is a character-level sequence similarity in [0,1], computed as
// 2*M/T where M is the number of characters covered by the longest matching
// blocks shared between a and b, and T is the total length of both inputs.
// Two empty inputs are identical by definition.
func matchRatio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchingChars(a, b)) / float64(total)
}

type span struct {
	alo, ahi, blo, bhi int
}

// matchingChars sums the sizes of the matching blocks found by repeatedly
// locating the longest common block and splitting around it.
func matchingChars(a, b []rune) int {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	matched := 0
	queue := []span{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, size := longestMatch(a, b2j, s)
		if size == 0 {
			continue
		}
		matched += size
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+size < s.ahi && j+size < s.bhi {
			queue = append(queue, span{i + size, s.ahi, j + size, s.bhi})
		}
	}
	return matched
}

// longestMatch finds the longest block a[i:i+size] == b[j:j+size] inside the
// given span. Ties resolve to the earliest block in a, then in b.
func longestMatch(a []rune, b2j map[rune][]int, s span) (besti, bestj, bestsize int) {
	besti, bestj = s.alo, s.blo

	// j2len[j] holds the length of the match ending at a[i-1], b[j].
	j2len := make(map[int]int)
	for i := s.alo; i < s.ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < s.blo {
				continue
			}
			if j >= s.bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return besti, bestj, bestsize
}
