package dedup

import (
	"math/rand"
	"sort"
	"testing"
)

func TestBKTree_FindWithinDistance(t *testing.T) {
	tree := newBKTree(HammingDistance)

	hashes := []uint64{
		0x0000000000000000,
		0x0000000000000001, // distance 1 from first
		0x0000000000000003, // distance 2 from first
		0xFFFFFFFFFFFFFFFF, // distance 64 from first
	}
	for i, h := range hashes {
		tree.insert(h, i)
	}

	tests := []struct {
		name      string
		query     uint64
		threshold int
		expected  []int
	}{
		{"exact only", 0, 0, []int{0}},
		{"within one", 0, 1, []int{0, 1}},
		{"within two", 0, 2, []int{0, 1, 2}},
		{"everything", 0, 64, []int{0, 1, 2, 3}},
		{"no match", 0x00000000000000F0, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tree.findWithinDistance(tt.query, tt.threshold)
			sort.Ints(got)
			if len(got) != len(tt.expected) {
				t.Fatalf("got %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Fatalf("got %v, want %v", got, tt.expected)
				}
			}
		})
	}
}

func TestBKTree_MatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	hashes := make([]uint64, 200)
	tree := newBKTree(HammingDistance)
	for i := range hashes {
		hashes[i] = rng.Uint64()
		tree.insert(hashes[i], i)
	}

	for trial := 0; trial < 20; trial++ {
		query := rng.Uint64()
		threshold := trial % 8

		var want []int
		for i, h := range hashes {
			if HammingDistance(query, h) <= threshold {
				want = append(want, i)
			}
		}

		got := tree.findWithinDistance(query, threshold)
		sort.Ints(got)

		if len(got) != len(want) {
			t.Fatalf("threshold %d: tree found %v, linear scan found %v", threshold, got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("threshold %d: tree found %v, linear scan found %v", threshold, got, want)
			}
		}
	}
}

func TestBKTree_Empty(t *testing.T) {
	tree := newBKTree(HammingDistance)
	if got := tree.findWithinDistance(123, 64); got != nil {
		t.Errorf("empty tree returned %v", got)
	}
}
