package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/boddenberg/retail-ledger-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Persons
// ============================================================

// RegisterPerson creates a person and opens a session for them.
func (s *LedgerService) RegisterPerson(ctx context.Context, req *domain.RegisterPersonRequest) (*domain.RegisterPersonResponse, error) {
	var resp *domain.RegisterPersonResponse
	err := s.run(ctx, domain.OpRegisterPerson, func(ctx context.Context) error {
		if strings.TrimSpace(req.Name) == "" {
			return &domain.ErrValidation{Field: "name", Message: "name is required"}
		}
		if req.Fingerprint == "" {
			return &domain.ErrValidation{Field: "fingerprint", Message: "fingerprint is required"}
		}
		alive := true
		if req.Alive != nil {
			alive = *req.Alive
		}

		p, err := domain.NewPerson(domain.PersonParams{
			Name:        req.Name,
			Age:         req.Age,
			Gender:      req.Gender,
			Fingerprint: req.Fingerprint,
			Rank:        req.SocioeconomicRank,
			Alive:       alive,
		})
		if err != nil {
			return err
		}
		if err := s.people.Add(p); err != nil {
			return fmt.Errorf("register person: %w", err)
		}

		token, err := s.signSession(p.ID())
		if err != nil {
			return fmt.Errorf("sign session: %w", err)
		}

		s.logger.Info("person registered", zap.String("person_id", p.ID()))
		resp = &domain.RegisterPersonResponse{
			Person:      p.Info(),
			AccessToken: token,
			ExpiresIn:   int(s.sessionTTL.Seconds()),
		}
		return nil
	})
	return resp, err
}

// GetPerson returns the public view of a person.
func (s *LedgerService) GetPerson(ctx context.Context, personID string) (*domain.PersonInfo, error) {
	_, span := ledgerTracer.Start(ctx, "LedgerService.GetPerson")
	defer span.End()

	p, err := s.person(personID)
	if err != nil {
		return nil, err
	}
	info := p.Info()
	return &info, nil
}

// UpdatePerson applies the non-nil fields of req. The rank is validated
// first so an invalid request changes nothing.
func (s *LedgerService) UpdatePerson(ctx context.Context, personID string, req *domain.UpdatePersonRequest) (*domain.PersonInfo, error) {
	var info domain.PersonInfo
	err := s.run(ctx, domain.OpUpdatePerson, func(ctx context.Context) error {
		p, err := s.person(personID)
		if err != nil {
			return err
		}
		if req.SocioeconomicRank != nil {
			if err := p.SetSocioeconomicRank(*req.SocioeconomicRank); err != nil {
				return err
			}
		}
		if req.Age != nil {
			p.SetAge(*req.Age)
		}
		if req.Alive != nil {
			p.SetAlive(*req.Alive)
		}
		info = p.Info()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}
