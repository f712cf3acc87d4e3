// Package etherdream binds the Ether Dream driver library. It is only
// built with the etherdream build tag, and needs libetherdream installed.
package etherdream
