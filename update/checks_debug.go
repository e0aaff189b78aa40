//go:build debug

package update

const checksEnabled = true
