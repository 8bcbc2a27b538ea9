/*
File Name:  Polynomial.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

Integer-coefficient univariate polynomial over math/big, reduced modulo a
fixed prime. Used both as the per-chunk share polynomial (coefficients are
plaintext bytes) and as the symbolic accumulator during Lagrange
reconstruction.
*/

package polynomial

import "math/big"

// Prime is the field modulus p = 2^261 - 261. Fixed for all polynomial
// arithmetic; fragment y-values always fit in 33 bytes since p < 2^264.
var Prime = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 261), big.NewInt(261))

// Polynomial is a coefficient list, lowest order first. A nil/empty slice
// represents the zero polynomial. Coefficients are always trimmed of
// trailing zeros after mutation.
type Polynomial struct {
	Coeffs []*big.Int
}

// New builds a polynomial from coefficients, lowest order first. The slice
// is copied and trimmed.
func New(coeffs ...*big.Int) *Polynomial {
	p := &Polynomial{Coeffs: append([]*big.Int{}, coeffs...)}
	p.trim()
	return p
}

// Zero returns the zero polynomial.
func Zero() *Polynomial {
	return &Polynomial{}
}

func (p *Polynomial) trim() {
	n := len(p.Coeffs)
	for n > 0 && p.Coeffs[n-1].Sign() == 0 {
		n--
	}
	p.Coeffs = p.Coeffs[:n]
}

// Degree returns the polynomial's degree; -1 for the zero polynomial.
func (p *Polynomial) Degree() int {
	return len(p.Coeffs) - 1
}

// Clone returns a deep copy.
func (p *Polynomial) Clone() *Polynomial {
	out := make([]*big.Int, len(p.Coeffs))
	for i, c := range p.Coeffs {
		out[i] = new(big.Int).Set(c)
	}
	return &Polynomial{Coeffs: out}
}

// Add returns p + q.
func (p *Polynomial) Add(q *Polynomial) *Polynomial {
	n := len(p.Coeffs)
	if len(q.Coeffs) > n {
		n = len(q.Coeffs)
	}
	out := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		sum := new(big.Int)
		if i < len(p.Coeffs) {
			sum.Add(sum, p.Coeffs[i])
		}
		if i < len(q.Coeffs) {
			sum.Add(sum, q.Coeffs[i])
		}
		out[i] = sum
	}
	r := &Polynomial{Coeffs: out}
	r.trim()
	return r
}

// AddInt returns p + n (n added to the constant term).
func (p *Polynomial) AddInt(n *big.Int) *Polynomial {
	return p.Add(New(n))
}

// MulInt returns p scaled by the integer n.
func (p *Polynomial) MulInt(n *big.Int) *Polynomial {
	out := make([]*big.Int, len(p.Coeffs))
	for i, c := range p.Coeffs {
		out[i] = new(big.Int).Mul(c, n)
	}
	r := &Polynomial{Coeffs: out}
	r.trim()
	return r
}

// Mul returns the product p * q by convolution.
func (p *Polynomial) Mul(q *Polynomial) *Polynomial {
	if len(p.Coeffs) == 0 || len(q.Coeffs) == 0 {
		return Zero()
	}
	out := make([]*big.Int, len(p.Coeffs)+len(q.Coeffs)-1)
	for i := range out {
		out[i] = new(big.Int)
	}
	for i, a := range p.Coeffs {
		for j, b := range q.Coeffs {
			out[i+j].Add(out[i+j], new(big.Int).Mul(a, b))
		}
	}
	r := &Polynomial{Coeffs: out}
	r.trim()
	return r
}

// Mod returns a new polynomial with every coefficient reduced modulo m; p
// itself is left unchanged.
func (p *Polynomial) Mod(m *big.Int) *Polynomial {
	out := make([]*big.Int, len(p.Coeffs))
	for i, c := range p.Coeffs {
		out[i] = new(big.Int).Mod(c, m)
	}
	r := &Polynomial{Coeffs: out}
	r.trim()
	return r
}

// Eval evaluates p(x) mod m using fast modular exponentiation per term.
func (p *Polynomial) Eval(x, m *big.Int) *big.Int {
	sum := new(big.Int)
	for i, c := range p.Coeffs {
		term := new(big.Int).Exp(x, big.NewInt(int64(i)), m)
		term.Mul(term, c)
		sum.Add(sum, term)
	}
	return sum.Mod(sum, m)
}

// Equal compares two polynomials by coefficient vector (after trimming).
func (p *Polynomial) Equal(q *Polynomial) bool {
	if len(p.Coeffs) != len(q.Coeffs) {
		return false
	}
	for i := range p.Coeffs {
		if p.Coeffs[i].Cmp(q.Coeffs[i]) != 0 {
			return false
		}
	}
	return true
}

// modInverse returns a^-1 mod p using Fermat's little theorem: a^(p-2) mod p.
// p must be prime.
func modInverse(a, p *big.Int) *big.Int {
	exp := new(big.Int).Sub(p, big.NewInt(2))
	return new(big.Int).Exp(a, exp, p)
}

// Coordinate is one (x, y) sample point used for interpolation.
type Coordinate struct {
	X, Y *big.Int
}

// Interpolate reconstructs the unique polynomial of degree < len(points)
// passing through all given coordinates, reduced modulo p, using Lagrange
// interpolation with Fermat's little theorem for modular inverses.
//
// Each basis polynomial L_i(x) = prod_{j != i} (x - x_j) / (x_i - x_j) is
// built symbolically as a Polynomial and scaled by y_i * denominator^-1
// before being accumulated; the final sum is reduced mod p.
func Interpolate(points []Coordinate, p *big.Int) *Polynomial {
	result := Zero()

	for i, pi := range points {
		numerator := New(big.NewInt(1))
		denominator := big.NewInt(1)

		for j, pj := range points {
			if i == j {
				continue
			}
			// (x - x_j)
			negXj := new(big.Int).Neg(pj.X)
			numerator = numerator.Mul(New(negXj, big.NewInt(1)))

			diff := new(big.Int).Sub(pi.X, pj.X)
			diff.Mod(diff, p)
			denominator.Mul(denominator, diff)
			denominator.Mod(denominator, p)
		}

		invDenom := modInverse(denominator, p)
		scale := new(big.Int).Mul(pi.Y, invDenom)
		scale.Mod(scale, p)

		term := numerator.MulInt(scale)
		result = result.Add(term)
	}

	return result.Mod(p)
}
