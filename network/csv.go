// File: csv.go
// Role: Load a Graph from the vertex/edge CSV tables described in
//       spec.md §6 ("Edge/Vertex files").
// AI-HINT (file):
//   - encoding/csv is used deliberately on the standard library: no
//     third-party CSV reader appears anywhere in the retrieved example
//     pack, so there is no ecosystem idiom to follow here (see DESIGN.md).
//   - Vertex file header: vertex_id,x,y
//   - Edge file header:   edge_list_id,edge_id,src_vertex_id,dst_vertex_id,distance[,attr=val ...]
//   - Ids must be dense integers 0..n-1; out-of-range ids are a load-time
//     error (spec §6, "Out-of-range ids produce a load-time error").
package network

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LoadCSV parses a vertex table and an edge table into an immutable Graph.
// Both readers are consumed fully and are not closed by LoadCSV.
//
// Complexity: O(|V| + |E|).
func LoadCSV(vertexR, edgeR io.Reader) (*Graph, error) {
	verts, err := readVertexCSV(vertexR)
	if err != nil {
		return nil, fmt.Errorf("network: vertex table: %w", err)
	}

	b, err := NewBuilder(len(verts), verts)
	if err != nil {
		return nil, fmt.Errorf("network: vertex table: %w", err)
	}

	if err := readEdgeCSV(edgeR, b); err != nil {
		return nil, fmt.Errorf("network: edge table: %w", err)
	}

	return b.Build(), nil
}

func readVertexCSV(r io.Reader) ([]Vertex, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty vertex table")
		}

		return nil, err
	}
	idx, err := headerIndex(header, "vertex_id", "x", "y")
	if err != nil {
		return nil, err
	}

	var out []Vertex
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		id, err := strconv.Atoi(rec[idx["vertex_id"]])
		if err != nil {
			return nil, fmt.Errorf("vertex_id %q: %w", rec[idx["vertex_id"]], err)
		}
		if id != len(out) {
			return nil, fmt.Errorf("%w: expected vertex_id=%d, got %d", ErrNonDenseIDs, len(out), id)
		}
		x, err := strconv.ParseFloat(rec[idx["x"]], 64)
		if err != nil {
			return nil, fmt.Errorf("x %q: %w", rec[idx["x"]], err)
		}
		y, err := strconv.ParseFloat(rec[idx["y"]], 64)
		if err != nil {
			return nil, fmt.Errorf("y %q: %w", rec[idx["y"]], err)
		}
		out = append(out, Vertex{ID: VertexId(id), X: x, Y: y})
	}

	return out, nil
}

func readEdgeCSV(r io.Reader, b *Builder) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return fmt.Errorf("empty edge table")
		}

		return err
	}
	idx, err := headerIndex(header, "edge_id", "src_vertex_id", "dst_vertex_id", "distance")
	if err != nil {
		return err
	}
	listIdx, hasList := idx["edge_list_id"]
	if !hasList {
		listIdx = -1
	}
	reserved := map[string]bool{
		"edge_list_id": true, "edge_id": true, "src_vertex_id": true,
		"dst_vertex_id": true, "distance": true,
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		list := EdgeListId(0)
		if hasList {
			n, err := strconv.Atoi(rec[listIdx])
			if err != nil {
				return fmt.Errorf("edge_list_id %q: %w", rec[listIdx], err)
			}
			list = EdgeListId(n)
		}
		eid, err := strconv.Atoi(rec[idx["edge_id"]])
		if err != nil {
			return fmt.Errorf("edge_id %q: %w", rec[idx["edge_id"]], err)
		}
		src, err := strconv.Atoi(rec[idx["src_vertex_id"]])
		if err != nil {
			return fmt.Errorf("src_vertex_id %q: %w", rec[idx["src_vertex_id"]], err)
		}
		dst, err := strconv.Atoi(rec[idx["dst_vertex_id"]])
		if err != nil {
			return fmt.Errorf("dst_vertex_id %q: %w", rec[idx["dst_vertex_id"]], err)
		}
		dist, err := strconv.ParseFloat(rec[idx["distance"]], 64)
		if err != nil {
			return fmt.Errorf("distance %q: %w", rec[idx["distance"]], err)
		}

		var attrs map[string]float64
		for name, col := range idx {
			if reserved[name] || col >= len(rec) {
				continue
			}
			v, err := strconv.ParseFloat(rec[col], 64)
			if err != nil {
				continue
			}
			if attrs == nil {
				attrs = make(map[string]float64)
			}
			attrs[name] = v
		}

		if err := b.AddEdge(list, EdgeId(eid), VertexId(src), VertexId(dst), dist, attrs); err != nil {
			return err
		}
	}

	return nil
}

func headerIndex(header []string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	return idx, nil
}
