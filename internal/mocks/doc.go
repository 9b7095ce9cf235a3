// Package mocks holds testify mocks for the ports interfaces.
package mocks
