package holdings

import "strings"

// Classify partitions records into the implicit native-currency group and one
// group per distinct token asset, keeping only records received by address.
// Address comparison is case-insensitive. Within each group the source order
// is preserved, and token groups appear in the order their asset was first
// observed, so classifying the same records twice yields identical output.
func Classify(records []TransferRecord, address string) (AssetGroup, []TokenGroup) {
	var native AssetGroup
	var tokens []TokenGroup
	index := make(map[AssetKey]int)

	for _, rec := range records {
		if !strings.EqualFold(rec.Recipient, address) {
			continue
		}
		if rec.Native() {
			native = append(native, rec)
			continue
		}
		key := keyFor(rec)
		i, ok := index[key]
		if !ok {
			i = len(tokens)
			index[key] = i
			tokens = append(tokens, TokenGroup{Key: key})
		}
		tokens[i].Records = append(tokens[i].Records, rec)
	}
	return native, tokens
}
