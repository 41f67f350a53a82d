package models

type DashboardStats struct {
	TotalClients        int   `json:"totalClients"`
	ClientsActifs       int   `json:"clientsActifs"`
	TotalCours          int   `json:"totalCours"`
	PaiementsAujourdhui int64 `json:"paiementsAujourdhui"`
	AbsentsAujourdhui   int   `json:"absentsAujourdhui"`
	TotalRecettes       int64 `json:"totalRecettes"`
}
