package domain_test

import (
	"errors"
	"testing"

	"github.com/boddenberg/retail-ledger-go/internal/domain"
)

func validParams() domain.PersonParams {
	return domain.PersonParams{
		Name:        "Alice",
		Age:         30,
		Gender:      "Female",
		Fingerprint: "afp",
		Rank:        5,
		Alive:       true,
	}
}

func TestNewPerson(t *testing.T) {
	p, err := domain.NewPerson(validParams())
	if err != nil {
		t.Fatalf("NewPerson: %v", err)
	}
	if p.ID() == "" {
		t.Error("expected generated ID")
	}
	if p.Name() != "Alice" || p.Age() != 30 || p.Gender() != domain.GenderFemale ||
		p.SocioeconomicRank() != 5 || !p.Alive() {
		t.Errorf("unexpected person: %+v", p.Info())
	}
	if !p.CheckFingerprint("afp") || p.CheckFingerprint("AFP") {
		t.Error("fingerprint check must match the secret exactly")
	}
}

func TestNewPerson_RankBounds(t *testing.T) {
	for _, rank := range []int{0, -1, 11} {
		params := validParams()
		params.Rank = rank

		p, err := domain.NewPerson(params)
		var outOfRange *domain.ErrOutOfRange
		if p != nil || !errors.As(err, &outOfRange) {
			t.Errorf("rank %d: expected ErrOutOfRange, got %v", rank, err)
		}
	}

	for _, rank := range []int{domain.MinRank, domain.MaxRank} {
		params := validParams()
		params.Rank = rank
		if _, err := domain.NewPerson(params); err != nil {
			t.Errorf("rank %d should be accepted: %v", rank, err)
		}
	}
}

func TestNewPerson_InvalidGender(t *testing.T) {
	params := validParams()
	params.Gender = "female"

	_, err := domain.NewPerson(params)
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) || validation.Field != "gender" {
		t.Fatalf("expected gender validation error, got %v", err)
	}
}

func TestSetSocioeconomicRank(t *testing.T) {
	p, _ := domain.NewPerson(validParams())

	if err := p.SetSocioeconomicRank(11); err == nil {
		t.Error("expected error for rank 11")
	}
	if p.SocioeconomicRank() != 5 {
		t.Errorf("failed update must not change rank, got %d", p.SocioeconomicRank())
	}
	if err := p.SetSocioeconomicRank(7); err != nil || p.SocioeconomicRank() != 7 {
		t.Errorf("expected rank 7, got %d (%v)", p.SocioeconomicRank(), err)
	}
}

func TestSetAgeAndAlive(t *testing.T) {
	p, _ := domain.NewPerson(validParams())
	p.SetAge(31)
	p.SetAlive(false)
	if p.Age() != 31 || p.Alive() {
		t.Errorf("unexpected state: %+v", p.Info())
	}
}

func TestSortPersons(t *testing.T) {
	names := []string{"Carol", "Alice", "Bob", "Alice"}
	var persons []*domain.Person
	for _, n := range names {
		params := validParams()
		params.Name = n
		p, _ := domain.NewPerson(params)
		persons = append(persons, p)
	}
	firstAlice := persons[1]

	domain.SortPersons(persons)

	want := []string{"Alice", "Alice", "Bob", "Carol"}
	for i, p := range persons {
		if p.Name() != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, p.Name(), want[i])
		}
	}
	if persons[0] != firstAlice {
		t.Error("sort must be stable among equal names")
	}
}
