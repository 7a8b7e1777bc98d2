package domain

import "strings"

// PickBestAppliance selects the appliance a chat message most likely refers
// to. It returns nil when the message is ambiguous and the user owns more
// than one appliance.
func PickBestAppliance(message string, appliances []Appliance) *Appliance {
	if len(appliances) == 0 {
		return nil
	}

	if detected, ok := DetectApplianceType(message); ok {
		if a := pickByType(detected, appliances); a != nil {
			return a
		}
	}

	if a := pickByTokens(message, appliances); a != nil {
		return a
	}

	if len(appliances) == 1 {
		return &appliances[0]
	}
	return nil
}

// pickByType prefers exact type matches over substring matches.
func pickByType(detected string, appliances []Appliance) *Appliance {
	want := normKey(detected)

	var exact, partial []int
	for i, a := range appliances {
		t := normKey(a.Type)
		switch {
		case t == want:
			exact = append(exact, i)
		case strings.Contains(t, want):
			partial = append(partial, i)
		}
	}

	if i := newest(appliances, exact); i >= 0 {
		return &appliances[i]
	}
	if i := newest(appliances, partial); i >= 0 {
		return &appliances[i]
	}
	return nil
}

// pickByTokens scores each appliance against the message: +2 when the whole
// normalized type appears, +1 when any of its "_" tokens does.
func pickByTokens(message string, appliances []Appliance) *Appliance {
	msg := normKey(message)

	best, bestScore := -1, 0
	for i, a := range appliances {
		t := normKey(a.Type)
		if t == "" {
			continue
		}
		score := 0
		if strings.Contains(msg, t) {
			score += 2
		}
		for _, tok := range strings.Split(t, "_") {
			if tok != "" && strings.Contains(msg, tok) {
				score++
				break
			}
		}
		if score == 0 {
			continue
		}
		if score > bestScore || (score == bestScore && installYearOrZero(a) > installYearOrZero(appliances[best])) {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return nil
	}
	return &appliances[best]
}

// newest returns the index in idx with the latest install year, first wins
// on ties. It returns -1 for an empty idx.
func newest(appliances []Appliance, idx []int) int {
	best := -1
	for _, i := range idx {
		if best < 0 || installYearOrZero(appliances[i]) > installYearOrZero(appliances[best]) {
			best = i
		}
	}
	return best
}

func installYearOrZero(a Appliance) int {
	return intOr(a.InstallYear, 0)
}
