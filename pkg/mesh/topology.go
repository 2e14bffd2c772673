package mesh

// Edge is an undirected edge with A < B.
type Edge struct {
	A, B int
}

func makeEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// edgeFaces maps every undirected edge to the faces using it, in face order.
func (m *Mesh) edgeFaces() map[Edge][]int {
	edges := make(map[Edge][]int, len(m.Faces)*3/2)
	for fi, f := range m.Faces {
		for k := 0; k < 3; k++ {
			e := makeEdge(f[k], f[(k+1)%3])
			edges[e] = append(edges[e], fi)
		}
	}
	return edges
}

type unionFind []int

func newUnionFind(n int) unionFind {
	uf := make(unionFind, n)
	for i := range uf {
		uf[i] = i
	}
	return uf
}

func (uf unionFind) find(i int) int {
	for uf[i] != i {
		uf[i] = uf[uf[i]]
		i = uf[i]
	}
	return i
}

func (uf unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if ra < rb {
		uf[rb] = ra
	} else {
		uf[ra] = rb
	}
}

// Components groups faces that are connected through shared edges. Groups are
// ordered by their lowest face index and list faces in ascending order.
func (m *Mesh) Components() [][]int {
	uf := newUnionFind(len(m.Faces))
	for _, faces := range m.edgeFaces() {
		for _, f := range faces[1:] {
			uf.union(faces[0], f)
		}
	}

	index := make(map[int]int)
	var groups [][]int
	for fi := range m.Faces {
		root := uf.find(fi)
		g, ok := index[root]
		if !ok {
			g = len(groups)
			index[root] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], fi)
	}
	return groups
}

// BoundaryLoops returns the chains of edges that belong to a single face, as
// vertex indices following the face winding. A closed loop repeats its first
// vertex at the end.
func (m *Mesh) BoundaryLoops() [][]int {
	counts := make(map[Edge]int, len(m.Faces)*3/2)
	for _, f := range m.Faces {
		for k := 0; k < 3; k++ {
			counts[makeEdge(f[k], f[(k+1)%3])]++
		}
	}

	// directed boundary edges in face order, plus the outgoing edges per vertex
	type directed struct{ from, to int }
	var boundary []directed
	outgoing := make(map[int][]int)
	for _, f := range m.Faces {
		for k := 0; k < 3; k++ {
			a, b := f[k], f[(k+1)%3]
			if counts[makeEdge(a, b)] != 1 {
				continue
			}
			outgoing[a] = append(outgoing[a], len(boundary))
			boundary = append(boundary, directed{from: a, to: b})
		}
	}

	used := make([]bool, len(boundary))
	next := func(v int) (int, bool) {
		for _, e := range outgoing[v] {
			if !used[e] {
				used[e] = true
				return boundary[e].to, true
			}
		}
		return 0, false
	}

	var loops [][]int
	for i, e := range boundary {
		if used[i] {
			continue
		}
		used[i] = true
		loop := []int{e.from, e.to}
		for cur := e.to; cur != e.from; {
			to, ok := next(cur)
			if !ok {
				break
			}
			loop = append(loop, to)
			cur = to
		}
		loops = append(loops, loop)
	}
	return loops
}

// FixNormals returns the mesh with a consistent winding across every
// edge-connected component, each component turned so its signed volume is not
// negative.
func (m *Mesh) FixNormals() *Mesh {
	out := m.Clone()
	edges := m.edgeFaces()
	done := make([]bool, len(out.Faces))

	for _, comp := range m.Components() {
		queue := []int{comp[0]}
		done[comp[0]] = true
		for len(queue) > 0 {
			fi := queue[0]
			queue = queue[1:]
			f := out.Faces[fi]
			for k := 0; k < 3; k++ {
				a, b := f[k], f[(k+1)%3]
				for _, gi := range edges[makeEdge(a, b)] {
					if done[gi] {
						continue
					}
					// a neighbour agreeing with f walks the shared edge as b->a
					if out.Faces[gi].hasEdge(a, b) {
						out.Faces[gi] = out.Faces[gi].Flip()
					}
					done[gi] = true
					queue = append(queue, gi)
				}
			}
		}

		if out.signedVolume(comp) < 0 {
			for _, fi := range comp {
				out.Faces[fi] = out.Faces[fi].Flip()
			}
		}
	}
	return out
}
