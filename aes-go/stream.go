package aesgo

// Stream is a keystream mode. Consecutive XORKeyStream calls behave as one
// call over the concatenation of their inputs: the counter or feedback
// register is never reset between calls.
type Stream interface {
	// XORKeyStream xors src with the keystream into dst. dst must be at least
	// as long as src; dst and src may be the same slice.
	XORKeyStream(dst, src []byte)
}

// NewStream returns the keystream for CFB, OFB or CTR. decrypt only matters
// for CFB, where the feedback register is fed with ciphertext.
func (a *AES) NewStream(mode Mode, iv []byte, decrypt bool) (Stream, error) {
	switch mode {
	case CFB:
		return a.NewCFB(iv, decrypt)
	case OFB:
		return a.NewOFB(iv)
	case CTR:
		return a.NewCTR(iv)
	default:
		return nil, ErrUnknownMode
	}
}

// NewCTR treats iv as the initial 128 bit big-endian counter.
func (a *AES) NewCTR(iv []byte) (Stream, error) {
	if len(iv) != BlockSize {
		return nil, ErrInvalidIV
	}
	return &ctr{aes: a, counter: [BlockSize]byte(iv), outUsed: BlockSize}, nil
}

// NewOFB feeds each keystream block back as the next register value.
func (a *AES) NewOFB(iv []byte) (Stream, error) {
	if len(iv) != BlockSize {
		return nil, ErrInvalidIV
	}
	return &ofb{aes: a, register: [BlockSize]byte(iv), outUsed: BlockSize}, nil
}

// NewCFB feeds each ciphertext block back as the next register value.
func (a *AES) NewCFB(iv []byte, decrypt bool) (Stream, error) {
	if len(iv) != BlockSize {
		return nil, ErrInvalidIV
	}
	return &cfb{aes: a, next: [BlockSize]byte(iv), outUsed: BlockSize, decrypt: decrypt}, nil
}

type ctr struct {
	aes     *AES
	counter [BlockSize]byte
	out     [BlockSize]byte
	outUsed int
}

func (x *ctr) XORKeyStream(dst, src []byte) {
	mustFit(dst, src)

	for i := range src {
		if x.outUsed == BlockSize {
			x.out = x.aes.encrypt(x.counter)
			x.outUsed = 0

			for j := BlockSize - 1; j >= 0; j-- {
				x.counter[j]++
				if x.counter[j] != 0 {
					break
				}
			}
		}
		dst[i] = src[i] ^ x.out[x.outUsed]
		x.outUsed++
	}
}

type ofb struct {
	aes      *AES
	register [BlockSize]byte
	outUsed  int
}

func (x *ofb) XORKeyStream(dst, src []byte) {
	mustFit(dst, src)

	for i := range src {
		if x.outUsed == BlockSize {
			x.register = x.aes.encrypt(x.register)
			x.outUsed = 0
		}
		dst[i] = src[i] ^ x.register[x.outUsed]
		x.outUsed++
	}
}

type cfb struct {
	aes     *AES
	out     [BlockSize]byte
	next    [BlockSize]byte
	outUsed int
	decrypt bool
}

func (x *cfb) XORKeyStream(dst, src []byte) {
	mustFit(dst, src)

	for i := range src {
		if x.outUsed == BlockSize {
			x.out = x.aes.encrypt(x.next)
			x.outUsed = 0
		}

		c := src[i]
		dst[i] = c ^ x.out[x.outUsed]
		if !x.decrypt {
			c = dst[i]
		}
		x.next[x.outUsed] = c
		x.outUsed++
	}
}

func mustFit(dst, src []byte) {
	if len(dst) < len(src) {
		panic("aesgo: output smaller than input")
	}
}
