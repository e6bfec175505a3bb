package strategy

import "fmt"

// Game represents a single pairing between two teams.
type Game struct {
	Home string
	Away string
}

// Round is one matchday of a round-robin. Bye is the team sitting out, or
// empty when every team plays.
type Round struct {
	Number int
	Games  []Game
	Bye    string
}

// Strategy generates the rounds of a season for one pool of teams.
type Strategy interface {
	Rounds(teams []string) []Round
}

// Get returns a Strategy by name.
func Get(name string) (Strategy, error) {
	switch name {
	case "single_round_robin":
		return SingleRoundRobin{}, nil
	case "double_round_robin":
		return DoubleRoundRobin{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy: %q", name)
	}
}

// bye marks the empty seat added when the team count is odd.
const bye = -1

// InitialOrder returns the seat order for n teams, padded with a bye seat
// when n is odd.
func InitialOrder(n int) []int {
	order := make([]int, 0, n+1)
	for i := range n {
		order = append(order, i)
	}
	if n%2 == 1 {
		order = append(order, bye)
	}
	return order
}

// Rotate returns the next circle-method order: seat 0 stays fixed and the
// last seat moves to position 1. The input is not modified.
func Rotate(order []int) []int {
	next := make([]int, len(order))
	if len(order) < 3 {
		copy(next, order)
		return next
	}
	next[0] = order[0]
	next[1] = order[len(order)-1]
	copy(next[2:], order[1:len(order)-1])
	return next
}

// SingleRoundRobin pairs every team with every other team once.
type SingleRoundRobin struct{}

func (SingleRoundRobin) Rounds(teams []string) []Round {
	return circle(teams)
}

// DoubleRoundRobin plays the single round-robin twice, the second leg with
// home and away swapped. Round numbers continue across legs.
type DoubleRoundRobin struct{}

func (DoubleRoundRobin) Rounds(teams []string) []Round {
	first := circle(teams)
	rounds := make([]Round, 0, 2*len(first))
	rounds = append(rounds, first...)
	for _, r := range first {
		games := make([]Game, len(r.Games))
		for i, g := range r.Games {
			games[i] = Game{Home: g.Away, Away: g.Home}
		}
		rounds = append(rounds, Round{
			Number: r.Number + len(first),
			Games:  games,
			Bye:    r.Bye,
		})
	}
	return rounds
}

func circle(teams []string) []Round {
	if len(teams) < 2 {
		return nil
	}

	order := InitialOrder(len(teams))
	seats := len(order)
	rounds := make([]Round, 0, seats-1)

	for r := 0; r < seats-1; r++ {
		round := Round{Number: r + 1}
		for i := 0; i < seats/2; i++ {
			home, away := order[i], order[seats-1-i]
			if home == bye || away == bye {
				if home == bye {
					round.Bye = teams[away]
				} else {
					round.Bye = teams[home]
				}
				continue
			}
			// Alternate by round parity so the fixed seat is not always home.
			if r%2 == 1 {
				home, away = away, home
			}
			round.Games = append(round.Games, Game{Home: teams[home], Away: teams[away]})
		}
		rounds = append(rounds, round)
		order = Rotate(order)
	}

	return rounds
}

// Partition splits teams into contiguous groups of at most size. The last
// group may be smaller.
func Partition(teams []string, size int) [][]string {
	if size <= 0 || len(teams) <= size {
		return [][]string{teams}
	}
	var groups [][]string
	for start := 0; start < len(teams); start += size {
		end := min(start+size, len(teams))
		groups = append(groups, teams[start:end])
	}
	return groups
}
