//go:build windows || darwin

package presenter

// openerAvailable is always true where the OS ships an opener.
func openerAvailable() bool {
	return true
}
