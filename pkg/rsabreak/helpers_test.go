package rsabreak

import (
	"math/big"
	"path/filepath"
	"testing"
)

// Close primes behind fixtures/targets_close_primes.json.
const (
	closeP = "95097065754048712493019462230827768523616324208853691743435754128633565197411"
	closeQ = "95097065754048712493019462230827768523616324208853691743435754128633565199507"
	closeN = "9043451915029864418819428504440471829435432473209536459781204611880343297896088210914453134680726276269481218450802362616718406933646701838202392054876377"
)

// 1024-bit modulus with close primes, used for key file fixtures.
const (
	wideP = "7463656040921987521615207903164559587171725165500243829884692148217678481505805673619866836681648143656895715103177743279463340525375177800805750055993377"
	wideQ = "7463656040921987521615207903164559587171725165500243829884692148217678481505805673619866836681648143656895715103177743279463340525375177800805750055998589"
	wideN = "55706161497191277069866015034633954013923387559194407664161004516042363044502476980202998660487500856532205894174496583651700401412717769145919775194791407348068791093659003651577302047180612769934216234268704296434004203757061950937799141445082018132166482858404938948641869389588282574292329740050105345053"
)

// Shared-prime moduli behind fixtures/targets_shared_prime.json:
// alice = P·Q, bob = P·R, carol = S·T.
const (
	sharedP = "198312484241472401536209650552541253687"
	sharedQ = "243199189504726237632579391127419422107"
	sharedR = "312437794905745030276021789585810477573"
	aliceN  = "48229435436194882266257096249512121797925700445084538287300184402074823058509"
	bobN    = "61960315278685947491261068711272177790297561096172895191424221194165617061651"
	carolN  = "36079854733315301892490793164464353319688021543673733640357157273723280457231"
)

// fixturesDir returns the repository fixtures directory.
func fixturesDir() string {
	return filepath.Join("..", "..", "fixtures")
}

// loadTestTargets loads targets from a JSON fixture.
func loadTestTargets(filename string) ([]*Target, error) {
	parser := &JSONParser{}
	return parser.ParseTargets(filepath.Join(fixturesDir(), filename))
}

// mustBig parses a decimal test constant.
func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	z, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("Invalid test integer: %s", s)
	}
	return z
}

// quietSmartStrategy returns a smart strategy with small phases and no output.
func quietSmartStrategy() *SmartStrategy {
	return NewSmartStrategy().
		WithOutput(nil).
		WithPhaseConfig(PhaseConfig{
			Radii:              []int64{64, 4096},
			FermatRounds:       50,
			IncludeSharedPrime: true,
		})
}
