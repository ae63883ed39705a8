package hopbridge_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
)

type HopbridgeTestSuite struct {
	suite.Suite
	Ctx context.Context
}

func (s *HopbridgeTestSuite) SetupTest() {
	s.Ctx = context.Background()
}

func TestHopbridge(t *testing.T) {
	suite.Run(t, new(HopbridgeTestSuite))
}
