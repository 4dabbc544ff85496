// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres) and contain no business logic;
// a missing row on single-row reads and updates is reported as sql.ErrNoRows.
package repository

import "errors"

// ErrImageLimit is returned by ProductRepository.Update when appending would push a
// product past ProductUpdate.MaxImages. The row is left unchanged.
var ErrImageLimit = errors.New("image limit exceeded")
