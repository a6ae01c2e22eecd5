package tie

import (
	"crypto/sha256"
	"encoding/binary"

	"golang.org/x/crypto/chacha20"

	"github.com/vm-engine/engine/vmerrors"
)

// wordRng draws successive little-endian uint32 words from a ChaCha20
// keystream seeded deterministically from tie_seed (VM-VAR-052), per
// spec §4.7. The nonce is fixed (all-zero) since the key itself is
// already a function of the seed; reusing the nonce across runs with
// the same seed is intentional — it is what makes the draw sequence
// reproducible.
type wordRng struct {
	cipher    *chacha20.Cipher
	wordIndex uint64
}

func newWordRng(seed uint64) (*wordRng, error) {
	var seedBytes [8]byte
	binary.LittleEndian.PutUint64(seedBytes[:], seed)
	key := sha256.Sum256(seedBytes[:])

	nonce := make([]byte, chacha20.NonceSize)
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce)
	if err != nil {
		return nil, vmerrors.Wrap(vmerrors.KindTie, vmerrors.ReasonTieBadSeed, "failed to initialize tie RNG", err)
	}
	return &wordRng{cipher: c}, nil
}

// nextUint32 returns the next keystream word and the word index it was
// drawn at (for TieEvent.Detail audit logging).
func (r *wordRng) nextUint32() (uint32, uint64) {
	var buf [4]byte
	r.cipher.XORKeyStream(buf[:], buf[:])
	idx := r.wordIndex
	r.wordIndex++
	return binary.LittleEndian.Uint32(buf[:]), idx
}

// uniformIndex draws an unbiased integer in [0, n) via rejection
// sampling over 32-bit words (spec §4.7 "draw an unbiased integer in
// [0, n) via rejection sampling"). Returns the chosen index and the
// word index of the accepted draw.
func (r *wordRng) uniformIndex(n int) (int, uint64) {
	if n <= 0 {
		return 0, r.wordIndex
	}
	limit := (uint32(0xFFFFFFFF) / uint32(n)) * uint32(n)
	for {
		word, idx := r.nextUint32()
		if word < limit {
			return int(word % uint32(n)), idx
		}
	}
}
