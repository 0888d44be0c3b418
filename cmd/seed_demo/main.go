package main

import (
	"fmt"
	"log"
	"time"

	"github.com/livrex-com/livrexgo/internal/config"
	"github.com/livrex-com/livrexgo/internal/database"
	"github.com/livrex-com/livrexgo/internal/models"
	"github.com/livrex-com/livrexgo/internal/utils"
)

func main() {
	fmt.Println("🌱 Livrex Demo Data Seeder")

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Connect to the local mirror database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connected to database")

	fmt.Println("🔨 Running database migrations...")
	err = db.AutoMigrate(
		&models.Commande{},
		&models.Livreur{},
		&models.Magasin{},
		&models.UserAccount{},
		&models.Cession{},
		&models.PendingChange{},
		&models.CachedImage{},
		&models.KVEntry{},
	)
	if err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	fmt.Println("✅ Migrations complete")

	// Refuse to seed on top of existing data
	var commandeCount int64
	db.Model(&models.Commande{}).Count(&commandeCount)
	if commandeCount > 0 {
		fmt.Printf("⚠️  Database already has %d commandes. Clear it first? (y/N): ", commandeCount)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("❌ Aborted. Database not modified.")
			return
		}

		fmt.Println("🗑️  Clearing existing data...")
		db.Exec("TRUNCATE TABLE pending_changes CASCADE")
		db.Exec("TRUNCATE TABLE commandes CASCADE")
		db.Exec("TRUNCATE TABLE cessions CASCADE")
		db.Exec("TRUNCATE TABLE livreurs CASCADE")
		db.Exec("TRUNCATE TABLE users CASCADE")
		db.Exec("TRUNCATE TABLE magasins CASCADE")
		fmt.Println("✅ Data cleared")
	}

	fmt.Println("📦 Creating demo data...")

	// 1. Magasins
	magasins := []models.Magasin{
		{ID: "mag-001", Nom: "Primeurs de la Halle", Adresse: "12 rue des Halles, 75001 Paris", Telephone: "+33 1 42 36 70 01", Email: "contact@primeurs-halle.fr", Actif: true},
		{ID: "mag-002", Nom: "Boucherie Lemaire", Adresse: "8 avenue Jean Jaurès, 69007 Lyon", Telephone: "+33 4 78 61 20 02", Email: "lemaire@boucherie.fr", Actif: true},
		{ID: "mag-003", Nom: "Fromagerie du Port", Adresse: "3 quai de Rive-Neuve, 13007 Marseille", Telephone: "+33 4 91 54 30 03", Email: "bonjour@fromagerieduport.fr", Actif: true},
	}
	for i := range magasins {
		if err := db.Create(&magasins[i]).Error; err != nil {
			log.Fatalf("❌ Failed to create magasin: %v", err)
		}
	}
	fmt.Printf("🏪 Created %d magasins\n", len(magasins))

	// 2. Livreurs
	livreurs := []models.Livreur{
		{ID: "liv-001", Nom: "Diallo", Prenom: "Mamadou", Telephone: "+33 6 12 34 56 01", Email: "m.diallo@livrex.fr", MagasinID: "mag-001", Statut: models.LivreurStatutActif},
		{ID: "liv-002", Nom: "Martin", Prenom: "Sophie", Telephone: "+33 6 12 34 56 02", Email: "s.martin@livrex.fr", MagasinID: "mag-001", Statut: models.LivreurStatutEnTournee},
		{ID: "liv-003", Nom: "Benali", Prenom: "Karim", Telephone: "+33 6 12 34 56 03", Email: "k.benali@livrex.fr", MagasinID: "mag-002", Statut: models.LivreurStatutActif},
	}
	for i := range livreurs {
		if err := db.Create(&livreurs[i]).Error; err != nil {
			log.Fatalf("❌ Failed to create livreur: %v", err)
		}
	}
	fmt.Printf("🚚 Created %d livreurs\n", len(livreurs))

	// 3. Users (password is "demo1234" for every account)
	passwordHash, err := utils.HashPassword("demo1234")
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}

	users := []models.UserAccount{
		{ID: "usr-admin", Email: "admin@livrex.fr", Nom: "Administrateur", Role: models.RoleAdmin, PasswordHash: passwordHash},
		{
			ID: "usr-halle", Email: "halle@livrex.fr", Nom: "Primeurs de la Halle", Role: models.RoleMagasin, PasswordHash: passwordHash,
			MagasinID: "mag-001", MagasinNom: magasins[0].Nom, MagasinAdresse: magasins[0].Adresse, MagasinTelephone: magasins[0].Telephone,
		},
		{ID: "usr-diallo", Email: "m.diallo@livrex.fr", Nom: "Mamadou Diallo", Role: models.RoleLivreur, PasswordHash: passwordHash},
	}
	for i := range users {
		if err := db.Create(&users[i]).Error; err != nil {
			log.Fatalf("❌ Failed to create user: %v", err)
		}
	}
	fmt.Printf("👤 Created %d users\n", len(users))

	// 4. Commandes across yesterday, today and tomorrow
	today := time.Now()
	dates := []string{
		today.AddDate(0, 0, -1).Format("2006-01-02"),
		today.Format("2006-01-02"),
		today.AddDate(0, 0, 1).Format("2006-01-02"),
	}

	commandes := []models.Commande{
		{ID: "cmd-001", ClientNom: "Claire Dubois", ClientTelephone: "+33 6 98 76 54 01", ClientAdresse: "25 rue de la République, 75011 Paris", DateLivraison: dates[0], CreneauLivraison: "09:00-11:00", MagasinID: "mag-001", LivreurID: "liv-001", Statut: models.CommandeStatutLivree, Montant: 48.90},
		{ID: "cmd-002", ClientNom: "Henri Moreau", ClientTelephone: "+33 6 98 76 54 02", ClientAdresse: "4 place Bellecour, 69002 Lyon", DateLivraison: dates[1], CreneauLivraison: "11:00-13:00", MagasinID: "mag-002", LivreurID: "liv-003", Statut: models.CommandeStatutEnCours, Montant: 112.50},
		{ID: "cmd-003", ClientNom: "Amina Haddad", ClientTelephone: "+33 6 98 76 54 03", ClientAdresse: "17 boulevard Longchamp, 13001 Marseille", DateLivraison: dates[1], CreneauLivraison: "14:00-16:00", MagasinID: "mag-003", Statut: models.CommandeStatutEnAttente, Montant: 35.00, Notes: "Interphone en panne, appeler en arrivant"},
		{ID: "cmd-004", ClientNom: "Paul Giraud", ClientTelephone: "+33 6 98 76 54 04", ClientAdresse: "2 rue des Carmes, 75005 Paris", DateLivraison: dates[2], CreneauLivraison: "09:00-11:00", MagasinID: "mag-001", Statut: models.CommandeStatutEnAttente, Montant: 67.20},
	}
	for i := range commandes {
		if err := db.Create(&commandes[i]).Error; err != nil {
			log.Fatalf("❌ Failed to create commande: %v", err)
		}
	}
	fmt.Printf("📦 Created %d commandes\n", len(commandes))

	// 5. One open cession between stores
	cession := models.Cession{
		ID:            "ces-001",
		MagasinSource: "mag-001",
		MagasinCible:  "mag-002",
		Produits:      []byte(`[{"nom":"Tomates grappe","quantite":12,"unite":"kg"}]`),
		Statut:        models.CessionStatutProposee,
		DateCession:   dates[1],
	}
	if err := db.Create(&cession).Error; err != nil {
		log.Fatalf("❌ Failed to create cession: %v", err)
	}
	fmt.Println("🔁 Created 1 cession")

	fmt.Println()
	fmt.Println("✅ Demo data ready. Sign in with admin@livrex.fr / demo1234")
}
