package main

import (
	"errors"
	"fmt"

	"github.com/medalboard/backend/internal/model"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

func (s *srv) startToken(cctx *cli.Context) error {
	s.loadDatabase()
	s.loadTokenEngine()
	s.loadRepos()

	user, err := s.userRepo.GetByID(s.ctx, cctx.String("user"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user, err = s.userRepo.GetByUsername(s.ctx, cctx.String("user"))
	}

	if err != nil {
		return fmt.Errorf("cannot get user %s: %w", cctx.String("user"), err)
	}

	token, err := s.tokenEngine.Generate(user.ID, model.AccessToken{
		ID:   user.ID,
		Role: string(user.Role),
	})
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
