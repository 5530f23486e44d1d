package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorString() {
	s.Run("prefers the message", func() {
		err := &Error{Code: CodeFeatureDisabled, Message: "chat support is not enabled"}
		s.Equal("chat support is not enabled", err.Error())
	})

	s.Run("falls back to the code", func() {
		err := &Error{Code: CodeInvalidState}
		s.Equal("invalid_state", err.Error())
	})
}

func (s *DomainErrorsSuite) TestIs() {
	s.Run("matches on code regardless of message", func() {
		s.True(errors.Is(New(CodeUnauthorized, "login required"), &Error{Code: CodeUnauthorized}))
	})

	s.Run("finds a coded error deep in a chain", func() {
		inner := New(CodeUpstream, "backend down")
		wrapped := fmt.Errorf("estimate: %w", inner)
		s.True(errors.Is(wrapped, &Error{Code: CodeUpstream}))
	})

	s.Run("does not match plain errors", func() {
		s.False((&Error{Code: CodeNotFound}).Is(errors.New("not_found")))
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("keeps the original code", func() {
		inner := New(CodeForbidden, "no access")
		err := Wrap(inner, CodeInternal, "proxy call failed")
		s.True(HasCode(err, CodeForbidden))
		s.Equal("proxy call failed", err.Error())
		s.ErrorIs(err, inner)
	})

	s.Run("applies the code to plain errors", func() {
		root := errors.New("dial tcp: refused")
		err := Wrap(root, CodeUpstream, "backend unreachable")
		s.Equal(CodeUpstream, CodeOf(err))
		s.ErrorIs(err, root)
	})
}

func (s *DomainErrorsSuite) TestCodeOf() {
	s.Equal(CodeInternal, CodeOf(errors.New("boom")))
	s.Equal(CodeTimeout, CodeOf(fmt.Errorf("x: %w", New(CodeTimeout, "slow"))))
}
