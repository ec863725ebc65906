package searchtree_test

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/routecore/routecore/network"
	"github.com/routecore/routecore/searchtree"
)

// TestProperty_NoCycles covers spec §8 property 2: for any tree built by a
// sequence of valid inserts, the walk from any label via its parent
// reaches the root in at most len(tree) steps.
func TestProperty_NoCycles(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 40).Draw(t, "n")
		tr := searchtree.New(network.Forward)
		_, err := tr.InsertRoot(lbl(0), 0, nil)
		if err != nil {
			t.Fatal(err)
		}

		// Each subsequent vertex i (1..n) attaches to a uniformly chosen
		// earlier vertex, which guarantees every Insert call sees a parent
		// already present in the tree (the only way Insert succeeds).
		for i := 1; i <= n; i++ {
			parent := rapid.IntRange(0, i-1).Draw(t, "parent")
			cost := rapid.Float64Range(0, 1000).Draw(t, "cost")
			_, err := tr.Insert(lbl(i), network.VertexId(i), lbl(parent), network.EdgeKey{EdgeId: network.EdgeId(i)}, cost, nil)
			if err != nil {
				t.Fatalf("insert of vertex %d under parent %d failed: %v", i, parent, err)
			}
		}

		limit := tr.Len()
		for i := 0; i <= n; i++ {
			cur := lbl(i)
			steps := 0
			for {
				node, err := tr.Get(cur)
				if err != nil {
					t.Fatalf("label %d vanished from tree: %v", i, err)
				}
				if !node.HasParent {
					break
				}
				cur = node.Parent
				steps++
				if steps > limit {
					t.Fatalf("label %d's parent walk exceeded %d steps, a cycle", i, limit)
				}
			}
		}
	})
}

// TestProperty_PathRoundTrip covers spec §8 property 1: for any reachable
// label, ReconstructPath returns exactly the edges on the unique
// root-to-label walk (checked here by replaying the recorded parent chain
// and comparing it to the reconstructed path).
func TestProperty_PathRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(t, "n")
		tr := searchtree.New(network.Forward)
		_, err := tr.InsertRoot(lbl(0), 0, nil)
		if err != nil {
			t.Fatal(err)
		}

		parentOf := map[int]int{0: -1}
		edgeOf := map[int]network.EdgeKey{}
		for i := 1; i <= n; i++ {
			parent := rapid.IntRange(0, i-1).Draw(t, "parent")
			ek := network.EdgeKey{EdgeId: network.EdgeId(i)}
			_, err := tr.Insert(lbl(i), network.VertexId(i), lbl(parent), ek, float64(i), nil)
			if err != nil {
				t.Fatalf("insert failed: %v", err)
			}
			parentOf[i] = parent
			edgeOf[i] = ek
		}

		target := rapid.IntRange(0, n).Draw(t, "target")
		path, err := tr.ReconstructPath(lbl(target), nil)
		if err != nil {
			t.Fatalf("ReconstructPath(%d): %v", target, err)
		}

		var wantVertices []network.VertexId
		var wantEdges []network.EdgeKey
		for v := target; v != -1; v = parentOf[v] {
			wantVertices = append([]network.VertexId{network.VertexId(v)}, wantVertices...)
			if parentOf[v] != -1 {
				wantEdges = append([]network.EdgeKey{edgeOf[v]}, wantEdges...)
			}
		}

		if len(path.Vertices) != len(wantVertices) {
			t.Fatalf("vertex count mismatch: got %v want %v", path.Vertices, wantVertices)
		}
		for i := range wantVertices {
			if path.Vertices[i] != wantVertices[i] {
				t.Fatalf("vertex[%d] mismatch: got %d want %d", i, path.Vertices[i], wantVertices[i])
			}
		}
		for i := range wantEdges {
			if path.Edges[i] != wantEdges[i] {
				t.Fatalf("edge[%d] mismatch: got %v want %v", i, path.Edges[i], wantEdges[i])
			}
		}
	})
}
