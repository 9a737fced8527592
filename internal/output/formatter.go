package output

// Formatter renders a Result into bytes for output. buf is a reusable
// buffer: implementations append to it and return the extended slice,
// so callers can pass buf[:0] to reuse the backing array.
type Formatter interface {
	Format(buf []byte, r *Result, multiFile bool) []byte
}
