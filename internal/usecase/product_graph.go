package usecase

import (
	"sort"

	"github.com/shelfmatch/backend/internal/domain"
)

// productGraph links product indices through matching pairs. Products with
// the same normalized description share a bucket. A matching pair links both
// buckets whole, since batch deduplication keeps one pair per description pair.
type productGraph struct {
	buckets     map[string][]int
	adjacency   [][]int
	componentOf []int
}

// newProductGraph indexes features by normalized description. A nil entry is
// a product without features; it can only become a singleton.
func newProductGraph(features []*domain.ProductFeatures) *productGraph {
	g := &productGraph{
		buckets:     make(map[string][]int),
		adjacency:   make([][]int, len(features)),
		componentOf: make([]int, len(features)),
	}
	for i, f := range features {
		if f == nil {
			continue
		}
		g.buckets[f.NormalizedDescription] = append(g.buckets[f.NormalizedDescription], i)
	}
	return g
}

func (g *productGraph) link(pairs []*domain.SimilarityResult) {
	for _, pair := range pairs {
		b1 := g.buckets[pair.Product1.NormalizedDescription]
		b2 := g.buckets[pair.Product2.NormalizedDescription]
		if len(b1) == 0 || len(b2) == 0 {
			continue
		}

		// Star around the first member of the first bucket.
		hub := b1[0]
		for _, idx := range b1[1:] {
			g.addEdge(hub, idx)
		}
		for _, idx := range b2 {
			if idx != hub {
				g.addEdge(hub, idx)
			}
		}
	}
}

func (g *productGraph) addEdge(a, b int) {
	g.adjacency[a] = append(g.adjacency[a], b)
	g.adjacency[b] = append(g.adjacency[b], a)
}

// components returns the connected components, each sorted by index and
// ordered by their smallest index. The traversal uses an explicit stack.
func (g *productGraph) components() [][]int {
	n := len(g.adjacency)
	visited := make([]bool, n)
	var components [][]int

	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}

		id := len(components)
		var members []int
		stack := []int{start}
		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[node] {
				continue
			}
			visited[node] = true
			g.componentOf[node] = id
			members = append(members, node)
			for _, next := range g.adjacency[node] {
				if !visited[next] {
					stack = append(stack, next)
				}
			}
		}

		sort.Ints(members)
		components = append(components, members)
	}

	return components
}

// scoresWithin returns the final scores of the pairs whose records both lie
// in component, in pair order. components must have been called first.
func (g *productGraph) scoresWithin(component []int, pairs []*domain.SimilarityResult) []float64 {
	scores := make([]float64, 0)
	if len(component) == 0 {
		return scores
	}

	id := g.componentOf[component[0]]
	for _, pair := range pairs {
		b1 := g.buckets[pair.Product1.NormalizedDescription]
		b2 := g.buckets[pair.Product2.NormalizedDescription]
		if len(b1) == 0 || len(b2) == 0 {
			continue
		}
		if g.componentOf[b1[0]] == id && g.componentOf[b2[0]] == id {
			scores = append(scores, pair.FinalScore)
		}
	}
	return scores
}
