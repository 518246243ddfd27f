package assign

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// PersonalizedMeaning appends a randomly chosen closing line addressed to recipient.
func PersonalizedMeaning(meaning, recipient string) string {
	return personalizedMeaning(meaning, recipient, time.Now().Year(), rand.IntN)
}

func personalizedMeaning(meaning, recipient string, year int, intn func(int) int) string {
	suffixes := []string{
		fmt.Sprintf("Trust in this journey, %s.", recipient),
		fmt.Sprintf("This energy surrounds you in %d.", year),
		fmt.Sprintf("The universe has spoken, %s.", recipient),
		"Embrace what's coming.",
		fmt.Sprintf("%s, the stars align for you.", recipient),
	}
	return meaning + " " + suffixes[intn(len(suffixes))]
}
