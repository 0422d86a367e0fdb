package aesgo

import (
	"github.com/Shayhha/FileShredder/key"
)

const (
	// BlockSize is the AES block size in bytes.
	BlockSize = 16

	keyBlock = 4 // 4 bytes or 32 bits
	nb       = 4 // columns in the state
)

// AES is the block cipher for one key. It holds the expanded round keys and
// nothing else, so it may be shared by goroutines as long as nobody calls
// Reset concurrently.
type AES struct {
	rounds    int
	roundKeys [][4][4]byte
}

// New expands k into its round keys. k must be 16, 24 or 32 bytes long.
func New(k key.Key) (*AES, error) {
	return newCipher(k.GetBytes())
}

func newCipher(k []byte) (*AES, error) {
	roundKeys, err := expandKey(k)
	if err != nil {
		return nil, err
	}
	return &AES{rounds: len(roundKeys) - 1, roundKeys: roundKeys}, nil
}

// Rounds returns Nr: 10, 12 or 14.
func (a *AES) Rounds() int {
	return a.rounds
}

// Reset zeroes the round keys. The cipher is unusable afterwards.
func (a *AES) Reset() {
	for i := range a.roundKeys {
		a.roundKeys[i] = [4][4]byte{}
	}
	a.roundKeys = nil
	a.rounds = 0
}

// EncryptBlock encrypts exactly one 16 byte block.
func (a *AES) EncryptBlock(b []byte) ([]byte, error) {
	if len(b) != BlockSize {
		return nil, ErrInvalidLength
	}
	r := a.encrypt([BlockSize]byte(b))
	return r[:], nil
}

// DecryptBlock decrypts exactly one 16 byte block.
func (a *AES) DecryptBlock(b []byte) ([]byte, error) {
	if len(b) != BlockSize {
		return nil, ErrInvalidLength
	}
	r := a.decrypt([BlockSize]byte(b))
	return r[:], nil
}

func (a *AES) encrypt(b [BlockSize]byte) [BlockSize]byte {
	state := addRoundKey(convertArrayToMatrix(b), a.roundKeys[0])

	for round := 1; round < a.rounds; round++ {
		state = subMatrix(state)
		state = shiftRows(state)
		state = mixColumns(state)
		state = addRoundKey(state, a.roundKeys[round])
	}

	// the final round has no MixColumns
	state = subMatrix(state)
	state = shiftRows(state)
	state = addRoundKey(state, a.roundKeys[a.rounds])

	return convertMatrixToArray(state)
}

func (a *AES) decrypt(b [BlockSize]byte) [BlockSize]byte {
	state := addRoundKey(convertArrayToMatrix(b), a.roundKeys[a.rounds])

	for round := a.rounds - 1; round > 0; round-- {
		state = invShiftRows(state)
		state = invSubMatrix(state)
		state = addRoundKey(state, a.roundKeys[round])
		state = invMixColumns(state)
	}

	state = invShiftRows(state)
	state = invSubMatrix(state)
	state = addRoundKey(state, a.roundKeys[0])

	return convertMatrixToArray(state)
}

func addRoundKey(state [4][4]byte, key [4][4]byte) [4][4]byte {
	return xorMatrix(state, key)
}

func subMatrix(word [4][4]byte) [4][4]byte {
	var s [4][4]byte
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			s[i][j] = sBox[word[i][j]]
		}
	}
	return s
}

func invSubMatrix(word [4][4]byte) [4][4]byte {
	var s [4][4]byte
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			s[i][j] = invSBox[word[i][j]]
		}
	}
	return s
}

// shiftRows rotates row r left by r positions.
func shiftRows(state [4][4]byte) [4][4]byte {
	var s [4][4]byte
	s[0] = state[0]

	s[1] = [4]byte{state[1][1], state[1][2], state[1][3], state[1][0]}
	s[2] = [4]byte{state[2][2], state[2][3], state[2][0], state[2][1]}
	s[3] = [4]byte{state[3][3], state[3][0], state[3][1], state[3][2]}

	return s
}

// invShiftRows rotates row r right by r positions.
func invShiftRows(state [4][4]byte) [4][4]byte {
	var s [4][4]byte
	s[0] = state[0]

	s[1] = [4]byte{state[1][3], state[1][0], state[1][1], state[1][2]}
	s[2] = [4]byte{state[2][2], state[2][3], state[2][0], state[2][1]}
	s[3] = [4]byte{state[3][1], state[3][2], state[3][3], state[3][0]}

	return s
}

// convertArrayToMatrix loads a block column-major: byte i lands in row i%4,
// column i/4.
func convertArrayToMatrix(b [BlockSize]byte) [4][4]byte {
	var r [4][4]byte
	for i := 0; i < BlockSize; i++ {
		r[i%4][i/4] = b[i]
	}
	return r
}

func convertMatrixToArray(m [4][4]byte) [BlockSize]byte {
	var r [BlockSize]byte
	for i := 0; i < BlockSize; i++ {
		r[i] = m[i%4][i/4]
	}
	return r
}

func xorMatrix(a, b [4][4]byte) [4][4]byte {
	var x [4][4]byte
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			x[i][j] = a[i][j] ^ b[i][j]
		}
	}
	return x
}

func xorBlock(a, b [BlockSize]byte) [BlockSize]byte {
	var x [BlockSize]byte
	for i := 0; i < BlockSize; i++ {
		x[i] = a[i] ^ b[i]
	}
	return x
}
