package cipher

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"sync"

	"modernc.org/sqlite"
)

var (
	sqliteOnce sync.Once
	sqliteErr  error
)

func init() {
	if err := RegisterSQLiteFunctions(); err != nil {
		panic(err)
	}
}

// RegisterSQLiteFunctions registers cryptcol_encrypt and cryptcol_decrypt
// with the modernc.org/sqlite driver. Registration only affects connections
// opened afterwards. Calls after the first return the first result.
func RegisterSQLiteFunctions() error {
	sqliteOnce.Do(func() {
		if sqliteErr = sqlite.RegisterScalarFunction(SQLiteEncryptFunc, 2, sqliteEncrypt); sqliteErr != nil {
			return
		}
		sqliteErr = sqlite.RegisterDeterministicScalarFunction(SQLiteDecryptFunc, 2, sqliteDecrypt)
	})
	return sqliteErr
}

func sqliteEncrypt(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if args[0] == nil {
		return nil, nil
	}
	key, err := sqliteKey(SQLiteEncryptFunc, args[1])
	if err != nil {
		return nil, err
	}
	var plaintext []byte
	switch v := args[0].(type) {
	case string:
		plaintext = []byte(v)
	case []byte:
		plaintext = v
	case int64:
		plaintext = strconv.AppendInt(nil, v, 10)
	case float64:
		plaintext = strconv.AppendFloat(nil, v, 'g', -1, 64)
	default:
		plaintext = fmt.Append(nil, v)
	}
	sealed, err := Seal(plaintext, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", SQLiteEncryptFunc, err)
	}
	return sealed, nil
}

func sqliteDecrypt(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if args[0] == nil {
		return nil, nil
	}
	key, err := sqliteKey(SQLiteDecryptFunc, args[1])
	if err != nil {
		return nil, err
	}
	var sealed []byte
	switch v := args[0].(type) {
	case []byte:
		sealed = v
	case string:
		sealed = []byte(v)
	default:
		return nil, fmt.Errorf("%s: %w", SQLiteDecryptFunc, ErrFormat)
	}
	plaintext, err := Open(sealed, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", SQLiteDecryptFunc, err)
	}
	return string(plaintext), nil
}

func sqliteKey(fn string, v driver.Value) (Key, error) {
	switch k := v.(type) {
	case string:
		return Key(k), nil
	case []byte:
		return Key(k), nil
	}
	return "", fmt.Errorf("%s: key must be text, got %T", fn, v)
}
