package envutil

// Option adjusts a Reader after the raw value has been parsed. Options run in
// the order given.
type Option[T any] func(Reader[T]) Reader[T]

// Default makes an unset variable read as dflt. Bad values are left alone so
// that a typo still surfaces as an error.
//
//	port := envutil.Int[int](ctx, "PORT", envutil.Default(8080))
func Default[T any](dflt T) Option[T] {
	return func(rdr Reader[T]) Reader[T] {
		if rdr.state != unset {
			return rdr
		}

		return found(rdr.key, dflt)
	}
}

// IfMissing makes an unset variable bad with err, for settings that must be
// provided.
func IfMissing[T any](err error) Option[T] {
	return func(rdr Reader[T]) Reader[T] {
		if rdr.state != unset {
			return rdr
		}

		return failed[T](rdr.key, err)
	}
}

// Validate checks a set value with f; a non-nil result makes the Reader bad.
//
//	envutil.Float64(ctx, "SAMPLE_RATE", envutil.Validate(inUnitRange))
func Validate[T any](f func(T) error) Option[T] {
	return func(rdr Reader[T]) Reader[T] {
		return rdr.Map(func(val T) (T, error) {
			return val, f(val)
		})
	}
}
