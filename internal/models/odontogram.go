package models

type ToothStatus string

const (
	ToothHealthy    ToothStatus = "SAUDAVEL"
	ToothCaries     ToothStatus = "CARIE"
	ToothFilling    ToothStatus = "RESTAURACAO"
	ToothRootCanal  ToothStatus = "CANAL"
	ToothProsthesis ToothStatus = "PROTESE"
	ToothImplant    ToothStatus = "IMPLANTE"
	ToothExtracted  ToothStatus = "EXTRAIDO"
	ToothMissing    ToothStatus = "AUSENTE"
	ToothFracture   ToothStatus = "FRATURA"
)

var toothStatusLabels = map[ToothStatus]string{
	ToothHealthy:    "Saudável",
	ToothCaries:     "Cárie",
	ToothFilling:    "Restauração",
	ToothRootCanal:  "Canal",
	ToothProsthesis: "Prótese",
	ToothImplant:    "Implante",
	ToothExtracted:  "Extraído",
	ToothMissing:    "Ausente",
	ToothFracture:   "Fratura",
}

func ToothStatuses() []ToothStatus {
	return []ToothStatus{
		ToothHealthy, ToothCaries, ToothFilling, ToothRootCanal, ToothProsthesis,
		ToothImplant, ToothExtracted, ToothMissing, ToothFracture,
	}
}

func (s ToothStatus) Valid() bool {
	_, ok := toothStatusLabels[s]
	return ok
}

func (s ToothStatus) Label() string {
	if l, ok := toothStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// UnderTreatment groups statuses the chart summary counts as treated.
func (s ToothStatus) UnderTreatment() bool {
	switch s {
	case ToothFilling, ToothRootCanal, ToothProsthesis, ToothImplant:
		return true
	}
	return false
}

// NeedsAttention groups statuses the chart summary flags.
func (s ToothStatus) NeedsAttention() bool {
	return s == ToothCaries || s == ToothFracture
}

// Face is one of the five surfaces a record may mark
type Face string

const (
	FaceOcclusal Face = "oclusal"
	FaceBuccal   Face = "vestibular"
	FaceLingual  Face = "lingual"
	FaceMesial   Face = "mesial"
	FaceDistal   Face = "distal"
)

var faceLabels = map[Face]string{
	FaceOcclusal: "Oclusal",
	FaceBuccal:   "Vestibular",
	FaceLingual:  "Lingual",
	FaceMesial:   "Mesial",
	FaceDistal:   "Distal",
}

func AllFaces() []Face {
	return []Face{FaceOcclusal, FaceBuccal, FaceLingual, FaceMesial, FaceDistal}
}

func (f Face) Label() string { return faceLabels[f] }

// ToothRecord is one append-only odontogram entry
type ToothRecord struct {
	ID          int         `json:"id"`
	Patient     PatientRef  `json:"paciente"`
	Dentist     UserRef     `json:"dentista"`
	ToothNumber int         `json:"numeroDente"`
	Status      ToothStatus `json:"status"`
	Procedure   string      `json:"procedimento,omitempty"`
	Notes       string      `json:"observacoes,omitempty"`
	RecordedAt  string      `json:"dataRegistro"`

	Occlusal bool `json:"faceOclusal"`
	Buccal   bool `json:"faceVestibular"`
	Lingual  bool `json:"faceLingual"`
	Mesial   bool `json:"faceMesial"`
	Distal   bool `json:"faceDistal"`
}

// Faces lists the marked surfaces in display order.
func (r *ToothRecord) Faces() []Face {
	var out []Face
	for _, f := range AllFaces() {
		if r.HasFace(f) {
			out = append(out, f)
		}
	}
	return out
}

func (r *ToothRecord) HasFace(f Face) bool {
	switch f {
	case FaceOcclusal:
		return r.Occlusal
	case FaceBuccal:
		return r.Buccal
	case FaceLingual:
		return r.Lingual
	case FaceMesial:
		return r.Mesial
	case FaceDistal:
		return r.Distal
	}
	return false
}

// ToothRecordRequest is the body of POST /odontograma
type ToothRecordRequest struct {
	PatientID   int         `json:"pacienteId"`
	DentistID   int         `json:"dentistaId"`
	ToothNumber int         `json:"numeroDente"`
	Status      ToothStatus `json:"status"`
	Procedure   string      `json:"procedimento,omitempty"`
	Notes       string      `json:"observacoes,omitempty"`

	Occlusal bool `json:"faceOclusal"`
	Buccal   bool `json:"faceVestibular"`
	Lingual  bool `json:"faceLingual"`
	Mesial   bool `json:"faceMesial"`
	Distal   bool `json:"faceDistal"`
}

func (r *ToothRecordRequest) SetFace(f Face, on bool) {
	switch f {
	case FaceOcclusal:
		r.Occlusal = on
	case FaceBuccal:
		r.Buccal = on
	case FaceLingual:
		r.Lingual = on
	case FaceMesial:
		r.Mesial = on
	case FaceDistal:
		r.Distal = on
	}
}

func (r ToothRecordRequest) HasFace(f Face) bool {
	rec := ToothRecord{Occlusal: r.Occlusal, Buccal: r.Buccal, Lingual: r.Lingual, Mesial: r.Mesial, Distal: r.Distal}
	return rec.HasFace(f)
}
