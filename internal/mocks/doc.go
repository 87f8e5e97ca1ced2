// Package mocks holds testify mocks for the ports, written in the
// expecter style: m.EXPECT().Method(args...).Return(...).
//
// Constructors register AssertExpectations with t.Cleanup.
package mocks

import "github.com/stretchr/testify/mock"

// TestingT is what the constructors need from *testing.T.
type TestingT interface {
	mock.TestingT
	Cleanup(func())
}
