package logging

import "time"

// Field constructors.

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Helpers for fields this engine logs constantly.

func Component(name string) Field {
	return String("component", name)
}

func Path(p string) Field {
	return String("path", p)
}

func Key(k []byte) Field {
	return String("key", string(k))
}

func Count(n int) Field {
	return Int("count", n)
}
