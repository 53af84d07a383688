// Package shipping holds the flat per-governorate delivery fee table.
package shipping

import (
	"sort"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrUnknownGovernorate is returned for a governorate key not in the table.
var ErrUnknownGovernorate = errors.New("unknown governorate")

// DefaultCurrency is the currency all fees and prices are denominated in.
const DefaultCurrency = "EGP"

// Governorate is one delivery zone with bilingual naming and a flat fee.
type Governorate struct {
	Key    string
	NameEN string
	NameAR string
	Fee    decimal.Decimal
}

var governorates = map[string]Governorate{}

func register(key, en, ar string, fee int64) {
	governorates[key] = Governorate{Key: key, NameEN: en, NameAR: ar, Fee: decimal.NewFromInt(fee)}
}

func init() {
	register("cairo", "Cairo", "القاهرة", 35)
	register("giza", "Giza", "الجيزة", 40)
	register("alex", "Alexandria", "الإسكندرية", 45)
	register("dakahlia", "Dakahlia", "الدقهلية", 50)
	register("sharqia", "Sharqia", "الشرقية", 50)
	register("gharbia", "Gharbia", "الغربية", 50)
	register("qalyubia", "Qalyubia", "القليوبية", 45)
	register("menoufia", "Menoufia", "المنوفية", 50)
	register("beheira", "Beheira", "البحيرة", 55)
	register("ismailia", "Ismailia", "الإسماعيلية", 55)
	register("suez", "Suez", "السويس", 55)
	register("port_said", "Port Said", "بورسعيد", 55)
	register("damietta", "Damietta", "دمياط", 55)
	register("fayoum", "Fayoum", "الفيوم", 55)
	register("bani_suef", "Beni Suef", "بني سويف", 55)
	register("minya", "Minya", "المنيا", 60)
	register("assiut", "Assiut", "أسيوط", 60)
	register("sohag", "Sohag", "سوهاج", 65)
	register("qena", "Qena", "قنا", 65)
	register("luxor", "Luxor", "الأقصر", 70)
	register("aswan", "Aswan", "أسوان", 75)
	register("red_sea", "Red Sea", "البحر الأحمر", 70)
	register("matruh", "Matrouh", "مطروح", 70)
	register("north_sinai", "North Sinai", "شمال سيناء", 75)
	register("south_sinai", "South Sinai", "جنوب سيناء", 75)
	register("kafr_el_sheikh", "Kafr El-Sheikh", "كفر الشيخ", 55)
}

// Fee returns the delivery fee for the governorate key.
func Fee(key string) (decimal.Decimal, error) {
	g, ok := governorates[key]
	if !ok {
		return decimal.Zero, errors.Wrapf(ErrUnknownGovernorate, "%q", key)
	}
	return g.Fee, nil
}

// List returns all governorates sorted by key, for dropdowns and seeding.
func List() []Governorate {
	out := make([]Governorate, 0, len(governorates))
	for _, g := range governorates {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
