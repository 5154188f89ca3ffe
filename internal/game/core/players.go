package core

import (
	"fmt"
	"math/bits"
)

// Player is a vision owner. SharedFrom has bit i set when the player
// receives the vision of player i.
type Player struct {
	ID         int
	Color      string
	Alive      bool
	SharedFrom uint32
}

// Players is the player registry.
type Players struct {
	list []*Player
}

func NewPlayers() *Players {
	return &Players{}
}

// Add registers a new player and returns its id.
func (p *Players) Add(color string) (int, error) {
	if len(p.list) >= MaxPlayers {
		return -1, fmt.Errorf("%w: limit is %d", ErrTooManyPlayers, MaxPlayers)
	}
	id := len(p.list)
	p.list = append(p.list, &Player{ID: id, Color: color, Alive: true})
	return id, nil
}

// Len returns the number of registered players.
func (p *Players) Len() int { return len(p.list) }

// All returns the players in id order.
func (p *Players) All() []*Player { return p.list }

// Get returns the player with the given id.
func (p *Players) Get(id int) (*Player, error) {
	if id < 0 || id >= len(p.list) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPlayer, id)
	}
	return p.list[id], nil
}

// ShareVision makes receiver see everything giver sees.
func (p *Players) ShareVision(giver, receiver int) error {
	r, err := p.Get(receiver)
	if err != nil {
		return err
	}
	if _, err := p.Get(giver); err != nil {
		return err
	}
	if giver != receiver {
		r.SharedFrom |= 1 << uint(giver)
	}
	return nil
}

// RevokeVision undoes ShareVision.
func (p *Players) RevokeVision(giver, receiver int) error {
	r, err := p.Get(receiver)
	if err != nil {
		return err
	}
	if giver >= 0 && giver < MaxPlayers {
		r.SharedFrom &^= 1 << uint(giver)
	}
	return nil
}

// Ally shares vision in both directions.
func (p *Players) Ally(a, b int) error {
	if err := p.ShareVision(a, b); err != nil {
		return err
	}
	return p.ShareVision(b, a)
}

// SharedVision returns the living players whose vision player receives.
func (p *Players) SharedVision(player int) []int {
	r, err := p.Get(player)
	if err != nil || r.SharedFrom == 0 {
		return nil
	}
	ids := make([]int, 0, bits.OnesCount32(r.SharedFrom))
	for mask := r.SharedFrom; mask != 0; mask &= mask - 1 {
		id := bits.TrailingZeros32(mask)
		if id < len(p.list) && p.list[id].Alive {
			ids = append(ids, id)
		}
	}
	return ids
}
