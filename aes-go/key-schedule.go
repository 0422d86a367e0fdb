package aesgo

// rounds returns Nr for a key of n bytes.
func rounds(n int) (int, error) {
	switch n {
	case 128 / 8:
		return 10, nil
	case 192 / 8:
		return 12, nil
	case 256 / 8:
		return 14, nil
	default:
		return 0, KeySizeError(n)
	}
}

// expandKey derives the Nr+1 round keys for k. Each round key is returned in
// state (matrix) form so it can be xored straight into the state.
func expandKey(k []byte) ([][4][4]byte, error) {
	nr, err := rounds(len(k))
	if err != nil {
		return nil, err
	}

	nk := len(k) / keyBlock
	total := nb * (nr + 1)

	w := make([][4]byte, total)
	for i := 0; i < nk; i++ {
		copy(w[i][:], k[i*keyBlock:(i+1)*keyBlock])
	}

	rc := byte(0x01)
	for i := nk; i < total; i++ {
		t := w[i-1]

		switch {
		case i%nk == 0:
			t = subWord(rotWord(t))
			t[0] ^= rc
			rc = mul2[rc]
		case nk > 6 && i%nk == 4:
			t = subWord(t)
		}

		w[i] = xor(w[i-nk], t)
	}

	roundKeys := make([][4][4]byte, nr+1)
	for r := range roundKeys {
		var b [BlockSize]byte
		for c := 0; c < nb; c++ {
			copy(b[c*keyBlock:], w[r*nb+c][:])
		}
		roundKeys[r] = convertArrayToMatrix(b)
	}

	for i := range w {
		w[i] = [4]byte{}
	}

	return roundKeys, nil
}

func rotWord(word [4]byte) [4]byte {
	return [4]byte{word[1], word[2], word[3], word[0]}
}

func subWord(word [4]byte) [4]byte {
	var s [4]byte
	for i := 0; i < 4; i++ {
		s[i] = sBox[word[i]]
	}
	return s
}

func xor(a, b [4]byte) [4]byte {
	var x [4]byte
	for i := 0; i < 4; i++ {
		x[i] = a[i] ^ b[i]
	}
	return x
}
