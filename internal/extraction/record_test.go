package extraction

import (
	"encoding/json"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Record", func() {
	var rec Record

	BeforeEach(func() {
		rec = Record{
			Source:        "cierre.txt",
			Date:          "05-03-2024",
			Time:          "23:15:42",
			TotalRooms:    72000,
			TotalProducts: 1500,
			TotalSales:    73500,
			Categories: []CategoryTotal{
				{Key: "JACUZZI", Count: 2, Value: 40000},
				{Key: "DECORA"},
			},
		}
	})

	Describe("Fields", func() {
		It("should list fixed fields first and then each category", func() {
			names := make([]string, 0)
			for _, f := range rec.Fields() {
				names = append(names, f.Name)
			}
			Expect(names).To(Equal([]string{
				"archivo", "fecha", "hora", "total_habitaciones", "total_productos", "total_ventas",
				"JACUZZI_cant", "JACUZZI_valor", "DECORA_cant", "DECORA_valor",
			}))
		})
	})

	Describe("MarshalJSON", func() {
		It("should write a flat object in field order", func() {
			data, err := json.Marshal(rec)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal(`{"archivo":"cierre.txt","fecha":"05-03-2024","hora":"23:15:42",` +
				`"total_habitaciones":72000,"total_productos":1500,"total_ventas":73500,` +
				`"JACUZZI_cant":2,"JACUZZI_valor":40000,"DECORA_cant":0,"DECORA_valor":0}`))
		})
	})

	Describe("UnmarshalJSON", func() {
		It("should read back what it wrote", func() {
			data, err := json.Marshal(rec)
			Expect(err).NotTo(HaveOccurred())

			var decoded Record
			Expect(json.Unmarshal(data, &decoded)).To(Succeed())
			Expect(decoded).To(Equal(rec))
		})

		It("should ignore unknown fields", func() {
			var decoded Record
			err := json.Unmarshal([]byte(`{"archivo":"a.txt","extra":{"nested":[1,2]},"JACUZZI_cant":1}`), &decoded)
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded.Source).To(Equal("a.txt"))
			Expect(decoded.Categories).To(Equal([]CategoryTotal{{Key: "JACUZZI", Count: 1}}))
		})

		It("should reject non-objects", func() {
			var decoded Record
			Expect(json.Unmarshal([]byte(`[1,2]`), &decoded)).To(MatchError(ContainSubstring("JSON object")))
		})

		It("should reject mistyped values", func() {
			var decoded Record
			err := json.Unmarshal([]byte(`{"total_ventas":"mucho"}`), &decoded)
			Expect(err).To(MatchError(ContainSubstring("field total_ventas")))
		})
	})

	Describe("NewResult", func() {
		It("should leave the error empty on success", func() {
			res := NewResult(rec, nil)
			Expect(res.Error).To(BeNil())

			data, err := json.Marshal(res)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(HaveSuffix(`"error":null}`))
			Expect(strings.HasPrefix(string(data), `{"resultado":{"archivo":"cierre.txt"`)).To(BeTrue())
		})

		It("should carry the error description", func() {
			res := NewResult(rec, errors.New("reading cierre.txt: boom"))
			Expect(res.Error).NotTo(BeNil())
			Expect(*res.Error).To(Equal("reading cierre.txt: boom"))
		})
	})
})
