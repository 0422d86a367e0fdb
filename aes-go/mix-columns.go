package aesgo

// gmul performs Galois Field (256) multiplication of two bytes.
// Only used to build the lookup tables; the round functions read the tables.
func gmul(a, b byte) byte {
	var p byte = 0

	for counter := 0; counter < 8; counter++ {
		if (b & 1) != 0 {
			p ^= a
		}

		hiBitSet := (a & 0x80) != 0
		a <<= 1
		if hiBitSet {
			a ^= 0x1B // x^8 + x^4 + x^3 + x + 1
		}
		b >>= 1
	}

	return p
}

// mixColumns multiplies every column of the state by the fixed matrix
// [[2,3,1,1],[1,2,3,1],[1,1,2,3],[3,1,1,2]].
func mixColumns(s [4][4]byte) [4][4]byte {
	var ss [4][4]byte

	for c := 0; c < 4; c++ {
		ss[0][c] = mul2[s[0][c]] ^ mul3[s[1][c]] ^ s[2][c] ^ s[3][c]
		ss[1][c] = s[0][c] ^ mul2[s[1][c]] ^ mul3[s[2][c]] ^ s[3][c]
		ss[2][c] = s[0][c] ^ s[1][c] ^ mul2[s[2][c]] ^ mul3[s[3][c]]
		ss[3][c] = mul3[s[0][c]] ^ s[1][c] ^ s[2][c] ^ mul2[s[3][c]]
	}

	return ss
}

// invMixColumns undoes mixColumns with the matrix
// [[14,11,13,9],[9,14,11,13],[13,9,14,11],[11,13,9,14]].
func invMixColumns(s [4][4]byte) [4][4]byte {
	var ss [4][4]byte

	for c := 0; c < 4; c++ {
		ss[0][c] = mul14[s[0][c]] ^ mul11[s[1][c]] ^ mul13[s[2][c]] ^ mul9[s[3][c]]
		ss[1][c] = mul9[s[0][c]] ^ mul14[s[1][c]] ^ mul11[s[2][c]] ^ mul13[s[3][c]]
		ss[2][c] = mul13[s[0][c]] ^ mul9[s[1][c]] ^ mul14[s[2][c]] ^ mul11[s[3][c]]
		ss[3][c] = mul11[s[0][c]] ^ mul13[s[1][c]] ^ mul9[s[2][c]] ^ mul14[s[3][c]]
	}

	return ss
}
