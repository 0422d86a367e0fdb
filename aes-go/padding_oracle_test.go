package aesgo

import (
	"testing"

	"github.com/Shayhha/FileShredder/key"
	"github.com/stretchr/testify/require"
)

// An oracle can be thought as a server that decrypts its input but doesn't
// return the plain text to its caller, only whether the padding was valid.
// Recovering the plaintext through it shows that CBC decryption rejects
// every inconsistent padding.
type oracle struct {
	aes *AES
}

func (o *oracle) Decrypt(encrypted []byte) error {
	// encrypted is the IV followed by the ciphertext
	_, err := o.aes.Decrypt(CBC, encrypted[BlockSize:], encrypted[:BlockSize])
	return err
}

func paddingOracle(t *testing.T, o *oracle, encrypted []byte) []byte {
	decrypted := make([]byte, len(encrypted))
	blocks := split(encrypted)

	for i := len(blocks) - 1; i >= 1; i-- {
		last := blocks[i]
		prev := blocks[i-1]

		dec := make([]byte, BlockSize)

		// copy previous to avoid modifying the original
		p := make([]byte, BlockSize)
		copy(p, prev)

		for z := BlockSize - 1; z >= 0; z-- {
			// b xored with the intermediate byte gives the padding value 16-z,
			// so the intermediate byte is b ^ (16-z)
			b := findPaddingByte(t, o, p, last, dec, z)
			x := b ^ byte(BlockSize-z)

			dec[z] = x

			// undo the CBC xor with the real previous block
			decrypted[i*BlockSize+z] = x ^ prev[z]
		}
	}

	return decrypted[BlockSize:] // remove IV from decryption block
}

// findPaddingByte tries all values for byte z of the forged previous block.
func findPaddingByte(t *testing.T, o *oracle, prev, last, dec []byte, z int) byte {
	paddingValue := byte(BlockSize - z)

	for x := BlockSize - 1; x > z; x-- {
		prev[x] = dec[x] ^ paddingValue
	}

	for j := 0x0; j <= 0xff; j++ {
		prev[z] = byte(j)
		if o.Decrypt(append(append([]byte{}, prev...), last...)) != nil {
			continue
		}

		if z == BlockSize-1 {
			// rule out a longer padding that happens to be valid, e.g. 0x02 0x02
			prev[z-1] ^= 1
			err := o.Decrypt(append(append([]byte{}, prev...), last...))
			prev[z-1] ^= 1
			if err != nil {
				continue
			}
		}

		return byte(j)
	}

	t.Fatalf("could not find padding byte %d", z)
	return 0
}

func split(b []byte) [][]byte {
	var blocks [][]byte
	for i := 0; i < len(b); i += BlockSize {
		end := i + BlockSize
		if end > len(b) {
			end = len(b)
		}
		blocks = append(blocks, b[i:end])
	}
	return blocks
}

func TestPaddingOracle(t *testing.T) {
	tests := []struct {
		name  string
		key   key.Key
		input string
	}{
		{
			name:  "Simple decryption test",
			key:   key.Bit128(),
			input: "Let's test if this is working!",
		},
		{
			name:  "Block aligned with AES-256",
			key:   key.Bit256(),
			input: "exactly thirty-two bytes long!!!",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			aes, err := New(test.key)
			require.NoError(t, err)

			iv := key.NewIV()
			encrypted, err := aes.EncryptCBC([]byte(test.input), iv)
			require.NoError(t, err)

			decrypted := paddingOracle(t, &oracle{aes: aes}, append(iv, encrypted...))
			decrypted, err = RemovePadding(decrypted)
			require.NoError(t, err)
			require.Equal(t, test.input, string(decrypted))
		})
	}
}
