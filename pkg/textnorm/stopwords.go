package textnorm

import (
	"bufio"
	"crypto/sha1"
	"fmt"
	"os"
	"sort"
	"strings"
)

// portugueseStopwords is the NLTK Portuguese stopword corpus. Entries with
// accents never match a normalized token; they are kept so the set stays
// identical to the one the models were trained with.
var portugueseStopwords = []string{
	"a", "à", "ao", "aos", "aquela", "aquelas", "aquele", "aqueles", "aquilo",
	"as", "às", "até", "com", "como", "da", "das", "de", "dela", "delas",
	"dele", "deles", "depois", "do", "dos", "e", "é", "ela", "elas", "ele",
	"eles", "em", "entre", "era", "eram", "éramos", "essa", "essas", "esse",
	"esses", "esta", "está", "estamos", "estão", "estar", "estas", "estava",
	"estavam", "estávamos", "este", "esteja", "estejam", "estejamos", "estes",
	"esteve", "estive", "estivemos", "estiver", "estivera", "estiveram",
	"estivéramos", "estiverem", "estivermos", "estivesse", "estivessem",
	"estivéssemos", "estou", "eu", "foi", "fomos", "for", "fora", "foram",
	"fôramos", "forem", "formos", "fosse", "fossem", "fôssemos", "fui", "há",
	"haja", "hajam", "hajamos", "hão", "havemos", "haver", "hei", "houve",
	"houvemos", "houver", "houvera", "houverá", "houveram", "houvéramos",
	"houverão", "houverei", "houverem", "houveremos", "houveria", "houveriam",
	"houveríamos", "houvermos", "houvesse", "houvessem", "houvéssemos", "isso",
	"isto", "já", "lhe", "lhes", "mais", "mas", "me", "mesmo", "meu", "meus",
	"minha", "minhas", "muito", "na", "não", "nas", "nem", "no", "nos", "nós",
	"nossa", "nossas", "nosso", "nossos", "num", "numa", "o", "os", "ou",
	"para", "pela", "pelas", "pelo", "pelos", "por", "qual", "quando", "que",
	"quem", "são", "se", "seja", "sejam", "sejamos", "sem", "ser", "será",
	"serão", "serei", "seremos", "seria", "seriam", "seríamos", "seu", "seus",
	"só", "somos", "sou", "sua", "suas", "também", "te", "tem", "tém", "temos",
	"tenha", "tenham", "tenhamos", "tenho", "terá", "terão", "terei",
	"teremos", "teria", "teriam", "teríamos", "teu", "teus", "teve", "tinha",
	"tinham", "tínhamos", "tive", "tivemos", "tiver", "tivera", "tiveram",
	"tivéramos", "tiverem", "tivermos", "tivesse", "tivessem", "tivéssemos",
	"tu", "tua", "tuas", "um", "uma", "você", "vocês", "vos",
}

// StopwordSet is an immutable set of stopwords.
type StopwordSet struct {
	words map[string]struct{}
}

// PortugueseStopwords returns the built-in Portuguese set.
func PortugueseStopwords() *StopwordSet {
	return NewStopwordSet(portugueseStopwords)
}

// NewStopwordSet builds a set from words. Words are lowercased.
func NewStopwordSet(words []string) *StopwordSet {
	set := &StopwordSet{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		set.words[w] = struct{}{}
	}
	return set
}

// LoadStopwords reads one word per line. Blank lines and lines starting
// with '#' are skipped.
func LoadStopwords(path string) (*StopwordSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stopwords file: %w", err)
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stopwords file: %w", err)
	}

	return NewStopwordSet(words), nil
}

// Contains reports whether word is a stopword.
func (s *StopwordSet) Contains(word string) bool {
	_, ok := s.words[word]
	return ok
}

// Len returns the number of stopwords.
func (s *StopwordSet) Len() int {
	return len(s.words)
}

// Words returns the stopwords sorted.
func (s *StopwordSet) Words() []string {
	words := make([]string, 0, len(s.words))
	for w := range s.words {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Fingerprint is a stable hash of the set, independent of insertion order.
func (s *StopwordSet) Fingerprint() string {
	h := sha1.New()
	for _, w := range s.Words() {
		h.Write([]byte(w))
		h.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
