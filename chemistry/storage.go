package chemistry

import (
	"fmt"
)

// Storage is a contiguous arena of atoms, split into a local segment
// followed by a ghost segment. Local atoms are owned by this process;
// ghost atoms are read-only images of atoms owned elsewhere (or periodic
// images in a serial run) whose positions are assumed up to date at the
// start of every force pass.
type Storage struct {
	atoms  []Atom
	nLocal int
	nGhost int
}

// NewStorage returns a Storage with room for capacity atoms.
func NewStorage(capacity int) *Storage {
	return &Storage{atoms: make([]Atom, 0, capacity)}
}

// AddLocal appends a local atom and returns a pointer to it. Local atoms
// must all be added before the first ghost.
func (s *Storage) AddLocal(a Atom) (*Atom, error) {
	if s.nGhost > 0 {
		return nil, fmt.Errorf(
			"cannot add local atom %d after ghost atoms", a.Id,
		)
	}
	if len(s.atoms) == cap(s.atoms) {
		return nil, fmt.Errorf(
			"atom storage capacity %d exceeded", cap(s.atoms),
		)
	}
	s.atoms = append(s.atoms, a)
	s.nLocal++
	return &s.atoms[len(s.atoms)-1], nil
}

// AddGhost appends a ghost atom and returns a pointer to it.
func (s *Storage) AddGhost(a Atom) (*Atom, error) {
	if len(s.atoms) == cap(s.atoms) {
		return nil, fmt.Errorf(
			"atom storage capacity %d exceeded", cap(s.atoms),
		)
	}
	s.atoms = append(s.atoms, a)
	s.nGhost++
	return &s.atoms[len(s.atoms)-1], nil
}

// ClearGhosts drops all ghost atoms, keeping local atoms intact.
func (s *Storage) ClearGhosts() {
	s.atoms = s.atoms[:s.nLocal]
	s.nGhost = 0
}

// NAtom returns the total number of atoms, local plus ghost.
func (s *Storage) NAtom() int { return len(s.atoms) }

// NLocal returns the number of local atoms.
func (s *Storage) NLocal() int { return s.nLocal }

// NGhost returns the number of ghost atoms.
func (s *Storage) NGhost() int { return s.nGhost }

// Atom returns a pointer to atom i. Indices below NLocal are local.
func (s *Storage) Atom(i int) *Atom { return &s.atoms[i] }

// IsGhost returns true if atom i is a ghost.
func (s *Storage) IsGhost(i int) bool { return i >= s.nLocal }

// ZeroForces clears the force accumulator of every atom.
func (s *Storage) ZeroForces() {
	for i := range s.atoms {
		s.atoms[i].Force.Zero()
	}
}
