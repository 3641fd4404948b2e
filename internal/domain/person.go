package domain

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ============================================================
// Persons
// ============================================================

// Gender of a person. Only the two values below are accepted.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// ParseGender matches s exactly against the supported genders.
func ParseGender(s string) (Gender, error) {
	switch Gender(s) {
	case GenderMale, GenderFemale:
		return Gender(s), nil
	}
	return "", &ErrValidation{Field: "gender", Message: "invalid gender: " + s}
}

// Socioeconomic rank bounds. Higher rank means a lower loan interest rate.
const (
	MinRank = 1
	MaxRank = 10
)

// PersonParams holds the construction inputs for a Person.
type PersonParams struct {
	Name        string
	Age         uint
	Gender      string
	Fingerprint string
	Rank        int
	Alive       bool
}

// Person is a customer record. The fingerprint secret is digested on
// construction and never kept.
type Person struct {
	id          string
	name        string
	gender      Gender
	fingerprint Digest

	mu    sync.RWMutex
	age   uint
	rank  int
	alive bool
}

// NewPerson validates p and builds a Person with a fresh ID.
func NewPerson(p PersonParams) (*Person, error) {
	gender, err := ParseGender(p.Gender)
	if err != nil {
		return nil, err
	}
	if err := checkRank(p.Rank); err != nil {
		return nil, err
	}
	return &Person{
		id:          uuid.New().String(),
		name:        p.Name,
		gender:      gender,
		fingerprint: NewDigest(p.Fingerprint),
		age:         p.Age,
		rank:        p.Rank,
		alive:       p.Alive,
	}, nil
}

func checkRank(rank int) error {
	if rank < MinRank || rank > MaxRank {
		return &ErrOutOfRange{Field: "socioeconomic_rank", Value: rank, Min: MinRank, Max: MaxRank}
	}
	return nil
}

func (p *Person) ID() string          { return p.id }
func (p *Person) Name() string        { return p.name }
func (p *Person) Gender() Gender      { return p.gender }
func (p *Person) Fingerprint() Digest { return p.fingerprint }

// CheckFingerprint is the single authorization primitive: it digests claimed
// and compares it with the stored digest.
func (p *Person) CheckFingerprint(claimed string) bool {
	return p.fingerprint.Matches(claimed)
}

func (p *Person) Age() uint {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.age
}

func (p *Person) SocioeconomicRank() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.rank
}

func (p *Person) Alive() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.alive
}

func (p *Person) SetAge(age uint) {
	p.mu.Lock()
	p.age = age
	p.mu.Unlock()
}

func (p *Person) SetAlive(alive bool) {
	p.mu.Lock()
	p.alive = alive
	p.mu.Unlock()
}

// SetSocioeconomicRank replaces the rank. Out-of-range values leave the
// person untouched.
func (p *Person) SetSocioeconomicRank(rank int) error {
	if err := checkRank(rank); err != nil {
		return err
	}
	p.mu.Lock()
	p.rank = rank
	p.mu.Unlock()
	return nil
}

// Info returns the public fields of the person.
func (p *Person) Info() PersonInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return PersonInfo{
		ID:                p.id,
		Name:              p.name,
		Age:               p.age,
		Gender:            p.gender,
		SocioeconomicRank: p.rank,
		Alive:             p.alive,
	}
}

// ComparePersons orders persons by name.
func ComparePersons(a, b *Person) int {
	return strings.Compare(a.name, b.name)
}

// SortPersons sorts in place by name, keeping insertion order among equals.
func SortPersons(persons []*Person) {
	sort.SliceStable(persons, func(i, j int) bool {
		return ComparePersons(persons[i], persons[j]) < 0
	})
}
