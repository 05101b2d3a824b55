package database

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

type ErrorClass int

const (
	ClassOther ErrorClass = iota
	ClassUniqueViolation
	ClassRowReferenced // parent row still referenced (1451)
	ClassMissingParent // child row points nowhere (1452)
	ClassDeadlock
	ClassLockTimeout
)

// MySQL server error numbers.
const (
	errDupEntry         = 1062
	errRowIsReferenced  = 1451
	errNoReferencedRow  = 1452
	errRowIsReferenced2 = 1217
	errNoReferencedRow2 = 1216
	errLockDeadlock     = 1213
	errLockWaitTimeout  = 1205
)

// ClassifyError inspects a driver error and reports its class.
func ClassifyError(err error) ErrorClass {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return ClassOther
	}
	switch me.Number {
	case errDupEntry:
		return ClassUniqueViolation
	case errRowIsReferenced, errRowIsReferenced2:
		return ClassRowReferenced
	case errNoReferencedRow, errNoReferencedRow2:
		return ClassMissingParent
	case errLockDeadlock:
		return ClassDeadlock
	case errLockWaitTimeout:
		return ClassLockTimeout
	}
	return ClassOther
}

// IsRetryable reports whether replaying the whole transaction may succeed.
func IsRetryable(err error) bool {
	switch ClassifyError(err) {
	case ClassDeadlock, ClassLockTimeout:
		return true
	}
	return false
}
